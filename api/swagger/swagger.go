package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "University Records API",
        "description": "Course-enrollment grading and verification core",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Auth", "description": "Authentication"},
        {"name": "Courses", "description": "Course catalog and grade boundaries"},
        {"name": "Enrollments", "description": "Student enrollment workflow"},
        {"name": "Verification", "description": "Reviewer adjudication queue"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue an access token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Token issued"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List courses",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Courses"],
                "summary": "Create a course (admin)",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCourseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Invalid boundary table"}
                }
            }
        },
        "/courses/{id}": {
            "get": {
                "tags": ["Courses"],
                "summary": "Get a course with its grade-boundary table",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/courses/{id}/boundaries": {
            "put": {
                "tags": ["Courses"],
                "summary": "Replace the grade-boundary table (admin); stored grades are not recomputed",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBoundariesRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "400": {"description": "Invalid boundary table"},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/enrollments": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List the authenticated student's enrollments",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["Enrollments"],
                "summary": "Enroll on a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateEnrollmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created, pending verification"},
                    "409": {"description": "Already enrolled in course"}
                }
            }
        },
        "/enrollments/{id}": {
            "patch": {
                "tags": ["Enrollments"],
                "summary": "Patch a pending enrollment (owner only)",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/EnrollmentPatch"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "403": {"description": "Not the owning student"},
                    "409": {"description": "No longer pending"}
                }
            },
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Delete a pending enrollment (owner only)",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "No longer pending"}
                }
            }
        },
        "/verifications/pending": {
            "get": {
                "tags": ["Verification"],
                "summary": "List enrollments awaiting verification (tutor/admin)",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/verifications/{id}": {
            "post": {
                "tags": ["Verification"],
                "summary": "Adjudicate a pending enrollment; one-shot",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/VerifyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Already adjudicated"}
                }
            }
        },
        "/verifications/export": {
            "get": {
                "tags": ["Verification"],
                "summary": "Export verification records as CSV or PDF",
                "parameters": [
                    {"name": "state", "in": "query", "type": "string", "default": "PENDING"},
                    {"name": "format", "in": "query", "type": "string", "default": "csv"}
                ],
                "responses": {"200": {"description": "File download"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "GradeBoundary": {
            "type": "object",
            "properties": {
                "letter": {"type": "string"},
                "min_total": {"type": "number"}
            }
        },
        "CreateCourseRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "provider": {"type": "string"},
                "instructor": {"type": "string"},
                "department": {"type": "string"},
                "duration_weeks": {"type": "integer"},
                "grade_boundaries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeBoundary"}
                }
            }
        },
        "UpdateBoundariesRequest": {
            "type": "object",
            "properties": {
                "grade_boundaries": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/GradeBoundary"}
                }
            }
        },
        "CreateEnrollmentRequest": {
            "type": "object",
            "properties": {
                "course_id": {"type": "string"},
                "assessment_marks": {"type": "number"},
                "exam_marks": {"type": "number"},
                "completion_status": {"type": "string", "enum": ["IN_PROGRESS", "COMPLETED", "NOT_COMPLETED"]}
            }
        },
        "EnrollmentPatch": {
            "type": "object",
            "properties": {
                "assessment_marks": {"type": "number"},
                "exam_marks": {"type": "number"},
                "completion_status": {"type": "string"},
                "credit_transfer_requested": {"type": "boolean"}
            }
        },
        "VerifyRequest": {
            "type": "object",
            "properties": {
                "decision": {"type": "string", "enum": ["VERIFIED", "REJECTED"]},
                "comments": {"type": "string"}
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
