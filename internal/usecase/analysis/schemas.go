package analysis

import "encoding/json"

// Response schemas constrain the model output so it unmarshals straight
// into the report entities. The schema dialect follows the Gemini
// structured-output format with uppercase type names.

var seoReportSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "url": {"type": "STRING"},
    "score": {"type": "NUMBER"},
    "title": {"type": "STRING"},
    "recommendations": {
      "type": "ARRAY",
      "items": {
        "type": "OBJECT",
        "properties": {
          "priority": {"type": "STRING", "enum": ["High", "Medium", "Low"]},
          "text": {"type": "STRING"}
        },
        "required": ["priority", "text"]
      }
    },
    "keywords": {"type": "ARRAY", "items": {"type": "STRING"}}
  },
  "required": ["url", "score", "title", "recommendations", "keywords"]
}`)

var speedReportSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "url": {"type": "STRING"},
    "performanceScore": {"type": "NUMBER"},
    "fcp": {"type": "STRING"},
    "lcp": {"type": "STRING"},
    "cls": {"type": "STRING"},
    "recommendations": {"type": "ARRAY", "items": {"type": "STRING"}}
  },
  "required": ["url", "performanceScore", "fcp", "lcp", "cls", "recommendations"]
}`)

var budgetPlanSchema = json.RawMessage(`{
  "type": "ARRAY",
  "items": {
    "type": "OBJECT",
    "properties": {
      "category": {"type": "STRING"},
      "item": {"type": "STRING"},
      "estimatedCost": {"type": "NUMBER"},
      "isEligible": {"type": "BOOLEAN"},
      "reason": {"type": "STRING"}
    },
    "required": ["category", "item", "estimatedCost", "isEligible", "reason"]
  }
}`)
