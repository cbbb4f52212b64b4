// Package client is a Go client for the HTTP API served by taskqueue serve.
//
// Idempotent requests are retried with backoff on transport errors and 5xx
// answers. A 404 on a run maps to errors.ResourceNotFoundError and a 400 to
// errors.InvalidConfigurationError.
//
//	c, err := client.NewClient("http://localhost:8000")
//	id, err := c.Find(ctx, "/data", "needle")
//	run, err := c.WaitRun(ctx, id, 200*time.Millisecond)
package client
