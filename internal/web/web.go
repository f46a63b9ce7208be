// Package web sketches the HTMX front end planned on top of the JSON API.
//
// # HTMX Web Application Implementation Plan
//
// # Architecture
//
// The web app wraps the internal/server JSON API with server-side rendering
// and HTMX for dynamic updates. Each view corresponds to a template and handler:
//
//  1. Mood Picker: checkbox grid of mood presets with a live filter preview
//  2. Filter Preview: HTMX partial swap rendering the composite ranges
//  3. Generate Confirm: name/description form with hx-post trigger
//  4. Progress Monitor: SSE (Server-Sent Events) streaming generation progress
//  5. Mix History: table of persisted playlists with export links
//
// Core Components
//
//   - HTTP Server: the internal/server router with html/template rendering
//   - Service Integration: same auth.Manager and tasks.PlaylistEngine as the CLI
//   - Session Management: the existing cookie session middleware
//   - SSE Handler: streams tasks.ProgressUpdate values during generation
//
// Routes
//
//	GET  /                → Mood picker view
//	GET  /preview         → HTMX partial: composite filter ranges
//	POST /generate        → Start generation, return SSE endpoint
//	GET  /generate/stream → SSE progress stream
//	GET  /history         → Persisted mixes from the playlist repository
//
// # Progress Streaming
//
// Generation progress reuses the tasks package channel protocol:
//  1. POST /generate launches a goroutine running PlaylistEngine.Generate
//  2. Client opens an SSE connection for the session
//  3. Each ProgressUpdate phase streams as one SSE event
//  4. On completion, a "done" event carries the playlist URL
package web
