package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Gradebook API",
        "description": "Personal academic grade tracker: weighted course trees and transcript exports.",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Course", "description": "Active course tree, grades and archive"},
        {"name": "Exports", "description": "Asynchronous CSV/PDF transcripts"},
        {"name": "Ops", "description": "Health, readiness and metrics"}
    ],
    "paths": {
        "/health": {
            "get": {
                "tags": ["Ops"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "tags": ["Ops"],
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"},
                    "503": {"description": "A dependency is unreachable"}
                }
            }
        },
        "/metrics": {
            "get": {
                "tags": ["Ops"],
                "summary": "Prometheus metrics",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/course/current": {
            "get": {
                "tags": ["Course"],
                "summary": "Aggregated current course",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseEnvelope"}},
                    "404": {"description": "NO_ACTIVE_COURSE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/setup": {
            "post": {
                "tags": ["Course"],
                "summary": "Create or replace the active course structure",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SetupCourseRequest"}}
                ],
                "responses": {
                    "200": {"description": "Course setup successful", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "VALIDATION_ERROR, INVALID_WEIGHTS or INVALID_GRADE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/component/{id}": {
            "patch": {
                "tags": ["Course"],
                "summary": "Set or clear one component grade",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Grade updated successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "INVALID_GRADE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown or archived component", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/reset-grades": {
            "post": {
                "tags": ["Course"],
                "summary": "Clear every grade of the active course",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "NO_ACTIVE_COURSE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/archive": {
            "post": {
                "tags": ["Course"],
                "summary": "Archive the active course",
                "responses": {
                    "200": {"description": "Course archived successfully", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "NO_ACTIVE_COURSE", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/archived": {
            "get": {
                "tags": ["Course"],
                "summary": "Archived course summaries, oldest archive first",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/archived/{id}": {
            "get": {
                "tags": ["Course"],
                "summary": "Aggregated tree of one archived course",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/CourseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/exports": {
            "post": {
                "tags": ["Exports"],
                "summary": "Queue a transcript export",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ExportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course/exports/{id}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/{token}": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a finished export",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"},
                    "403": {"description": "Invalid or expired token", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "ComponentInput": {
            "type": "object",
            "required": ["name", "weight"],
            "properties": {
                "name": {"type": "string"},
                "weight": {"type": "number", "minimum": 0, "exclusiveMinimum": true, "maximum": 100},
                "grade": {"type": "number", "minimum": 0, "maximum": 100, "x-nullable": true}
            }
        },
        "ModuleInput": {
            "type": "object",
            "required": ["module_name", "components"],
            "properties": {
                "module_name": {"type": "string"},
                "credits": {"type": "integer", "minimum": 0},
                "components": {"type": "array", "items": {"$ref": "#/definitions/ComponentInput"}}
            }
        },
        "YearInput": {
            "type": "object",
            "required": ["year_number", "weight"],
            "properties": {
                "year_number": {"type": "integer", "minimum": 1},
                "weight": {"type": "number", "minimum": 0, "maximum": 100},
                "modules": {"type": "array", "items": {"$ref": "#/definitions/ModuleInput"}}
            }
        },
        "SetupCourseRequest": {
            "type": "object",
            "required": ["name", "years"],
            "properties": {
                "name": {"type": "string"},
                "years": {"type": "array", "items": {"$ref": "#/definitions/YearInput"}}
            }
        },
        "UpdateGradeRequest": {
            "type": "object",
            "properties": {
                "grade": {"type": "number", "minimum": 0, "maximum": 100, "x-nullable": true}
            }
        },
        "ExportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]},
                "course_id": {"type": "string", "format": "uuid"}
            }
        },
        "Component": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "weight": {"type": "number"},
                "grade": {"type": "number", "x-nullable": true}
            }
        },
        "Module": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "module_name": {"type": "string"},
                "credits": {"type": "integer"},
                "grade": {"type": "number", "x-nullable": true},
                "components": {"type": "array", "items": {"$ref": "#/definitions/Component"}}
            }
        },
        "Year": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "year_number": {"type": "integer"},
                "weight": {"type": "number"},
                "grade": {"type": "number", "x-nullable": true},
                "modules": {"type": "array", "items": {"$ref": "#/definitions/Module"}}
            }
        },
        "Progress": {
            "type": "object",
            "properties": {
                "completed": {"type": "integer"},
                "total": {"type": "integer"},
                "percentage": {"type": "number"}
            }
        },
        "Course": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "is_archived": {"type": "boolean"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"},
                "archived_at": {"type": "string", "format": "date-time"},
                "total_percentage": {"type": "number", "x-nullable": true},
                "progress": {"$ref": "#/definitions/Progress"},
                "years": {"type": "array", "items": {"$ref": "#/definitions/Year"}}
            }
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
        },
        "CourseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"$ref": "#/definitions/Course"},
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
