package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Attendance Engine API",
        "description": "Attendance consolidation and reporting service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Roster", "description": "Faculty course assignments and student rosters"},
        {"name": "Attendance", "description": "Day and range attendance queries"},
        {"name": "Filters", "description": "Report filter sessions"},
        {"name": "Reports", "description": "Report rendering and export"}
    ],
    "paths": {
        "/roster/{facultyId}/courses": {
            "get": {
                "tags": ["Roster"],
                "summary": "List courses assigned to a faculty member",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/{facultyId}/courses/{courseId}/students": {
            "get": {
                "tags": ["Roster"],
                "summary": "List enrolled students for a faculty course",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"},
                    {"name": "courseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/roster/{facultyId}/cache": {
            "delete": {
                "tags": ["Roster"],
                "summary": "Invalidate cached roster entries for a faculty member",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/attendance/day": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Attendance for a single day grouped by session",
                "parameters": [
                    {"name": "facultyId", "in": "query", "required": true, "type": "string"},
                    {"name": "courseId", "in": "query", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "batch", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/attendance/range": {
            "get": {
                "tags": ["Attendance"],
                "summary": "Consolidated attendance over a date range",
                "parameters": [
                    {"name": "facultyId", "in": "query", "required": true, "type": "string"},
                    {"name": "courseId", "in": "query", "required": true, "type": "string"},
                    {"name": "fromDate", "in": "query", "required": true, "type": "string"},
                    {"name": "toDate", "in": "query", "required": true, "type": "string"},
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "batch", "in": "query", "type": "string"},
                    {"name": "semester", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filters/{facultyId}/{mode}": {
            "get": {
                "tags": ["Filters"],
                "summary": "Current filter state for a faculty session",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Filters"],
                "summary": "Reset a filter session",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/filters/{facultyId}/{mode}/course": {
            "post": {
                "tags": ["Filters"],
                "summary": "Select the course for a filter session",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filters/{facultyId}/{mode}/fields": {
            "post": {
                "tags": ["Filters"],
                "summary": "Apply filter field selections",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectFiltersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/filters/{facultyId}/{mode}/report": {
            "get": {
                "tags": ["Filters"],
                "summary": "Run the query for the current filter state",
                "parameters": [
                    {"name": "facultyId", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Filter state incomplete"}
                }
            }
        },
        "/reports/export": {
            "post": {
                "tags": ["Reports"],
                "summary": "Export an attendance report document",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "200": {"description": "Rendered document"},
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/jobs/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a stored report document",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Document"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "SelectCourseRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"}
            },
            "required": ["course_id"]
        },
        "SelectFiltersRequest": {
            "type": "object",
            "properties": {
                "department": {"type": "string"},
                "batch": {"type": "string"},
                "semester": {"type": "string"},
                "date": {"type": "string"},
                "from_date": {"type": "string"},
                "to_date": {"type": "string"}
            }
        },
        "ExportRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "enum": ["single", "range"]},
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "async": {"type": "boolean"},
                "faculty_id": {"type": "string"},
                "course_id": {"type": "string"},
                "course_name": {"type": "string"},
                "date": {"type": "string"},
                "from_date": {"type": "string"},
                "to_date": {"type": "string"},
                "department": {"type": "string"},
                "batch": {"type": "string"},
                "semester": {"type": "string"}
            },
            "required": ["mode", "format", "faculty_id", "course_id"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
