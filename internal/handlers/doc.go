// Package handlers implements the HTTP API of taskqueue.
//
// Handlers validate requests, delegate to the services layer and map service
// errors to HTTP status codes.
//
//	HTTP Request (Gin)
//	    │
//	    ▼
//	Handler (this package)
//	    │
//	    ▼
//	Services Layer: Jobs │ Journal
//
// The Handler implements v1.ServerInterface and is registered with:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
//	┌────────┬──────────────────┬──────────────────────────────────────────┐
//	│ Method │ Endpoint         │ Description                              │
//	├────────┼──────────────────┼──────────────────────────────────────────┤
//	│ GET    │ /health          │ Liveness                                 │
//	│ GET    │ /scheduler       │ Shared scheduler counters                │
//	│ PUT    │ /scheduler/limit │ Change the concurrency limit             │
//	│ GET    │ /runs            │ List journaled runs                      │
//	│ GET    │ /runs/{id}       │ Get a run, running or journaled          │
//	│ POST   │ /jobs/find       │ Start a background keyword search        │
//	└────────┴──────────────────┴──────────────────────────────────────────┘
//
// GET /runs accepts repeated job and state parameters (OR logic within a
// parameter) plus limit (default 20, max 100) and offset:
//
//	/runs?job=find&state=completed&state=failed&limit=10
//
// Response:
//
//	{
//	    "total": 12,
//	    "runs": [
//	        {
//	            "id": "5b0e...",
//	            "job": "find",
//	            "state": "completed",
//	            "output": ["/data/a.txt"],
//	            "startedAt": "2024-03-01T12:00:00Z",
//	            "finishedAt": "2024-03-01T12:00:01Z",
//	            "duration": 1000
//	        }
//	    ]
//	}
//
// POST /jobs/find takes {"dir": "/data", "keyword": "needle"} and answers
// 202 Accepted with the run id. Poll GET /runs/{id} for the outcome.
//
// # Error Handling
//
// Errors use the format { "error": "error message" }.
//
//	┌─────────────────────────────┬────────┬──────────────────────────────┐
//	│ Error Type                  │ Status │ When                         │
//	├─────────────────────────────┼────────┼──────────────────────────────┤
//	│ Validation error            │ 400    │ Invalid body or query        │
//	│ InvalidConfigurationError   │ 400    │ Limit below 1                │
//	│ ResourceNotFoundError       │ 404    │ Unknown run id               │
//	│ Internal error              │ 500    │ Unexpected service errors    │
//	└─────────────────────────────┴────────┴──────────────────────────────┘
package handlers
