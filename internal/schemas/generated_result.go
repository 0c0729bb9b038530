package schemas

// generatedResultSchema is the structural contract every backend generation
// response must satisfy before typed decoding. Bullets may arrive as plain
// strings or as {"content": ...} objects; both are accepted here and
// normalized during decoding.
const generatedResultSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "generated_result",
  "type": "object",
  "required": ["cv"],
  "properties": {
    "cv": {
      "type": "object",
      "required": ["professional_experience"],
      "properties": {
        "name": {"type": "string"},
        "contact": {"type": "string"},
        "summary": {"type": "string"},
        "professional_experience": {
          "type": "object",
          "required": ["roles"],
          "properties": {
            "roles": {
              "type": "array",
              "items": {
                "type": "object",
                "required": ["company", "title", "bullets"],
                "properties": {
                  "company": {"type": "string"},
                  "title": {"type": "string"},
                  "start_date": {"type": "string"},
                  "end_date": {"type": "string"},
                  "location": {"type": "string"},
                  "bullets": {
                    "type": "array",
                    "items": {
                      "oneOf": [
                        {"type": "string"},
                        {
                          "type": "object",
                          "required": ["content"],
                          "properties": {"content": {"type": "string"}}
                        }
                      ]
                    }
                  }
                }
              }
            }
          }
        },
        "core_competencies": {
          "type": "array",
          "items": {"type": "string"}
        }
      }
    },
    "cover_letter": {"type": "string"},
    "job_title": {"type": "string"},
    "company_name": {"type": "string"}
  }
}`

// ValidateGeneratedResult checks a raw backend response against the
// generated-result schema.
func ValidateGeneratedResult(jsonContent string) error {
	return ValidateJSONString(generatedResultSchema, jsonContent)
}
