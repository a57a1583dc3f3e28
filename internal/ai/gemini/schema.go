package gemini

import "google.golang.org/genai"

var stringList = &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}

var analysisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"atsScore":        {Type: genai.TypeNumber},
		"extractedSkills": stringList,
		"missingSkills":   stringList,
		"strengths":       stringList,
		"improvements":    stringList,
	},
	Required: []string{"atsScore", "extractedSkills", "missingSkills", "strengths", "improvements"},
}

var roadmapSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":    {Type: genai.TypeString},
		"duration": {Type: genai.TypeString},
		"modules": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":        {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"resources":   stringList,
				},
				Required: []string{"name", "description", "resources"},
			},
		},
	},
	Required: []string{"title", "duration", "modules"},
}

var quizSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"id":            {Type: genai.TypeString},
			"question":      {Type: genai.TypeString},
			"options":       stringList,
			"correctAnswer": {Type: genai.TypeNumber, Description: "Index of the correct option (0-3)"},
			"explanation":   {Type: genai.TypeString},
		},
		Required: []string{"id", "question", "options", "correctAnswer", "explanation"},
	},
}

var feedbackSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"score":      {Type: genai.TypeNumber},
		"feedback":   {Type: genai.TypeString},
		"suggestion": {Type: genai.TypeString},
	},
	Required: []string{"score", "feedback", "suggestion"},
}
