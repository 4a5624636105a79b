// Package mergeapi exposes three-way merge sessions over HTTP.
//
// A session is created from three snapshot objects (base, source, target)
// plus the two comparison documents describing how source and target each
// diverged from the base. Creating a session runs the merge operation and
// holds the resulting action list in memory.
//
// # Endpoints
//
//   - POST /merge/sessions                                  Create a session
//   - GET  /merge/sessions/:id/actions                      List actions
//   - POST /merge/sessions/:id/actions/:actionID/decision   Decide a conflict
//   - POST /merge/sessions/:id/apply                        Apply and return the merged snapshot
//
// Conflict actions start out pending. Applying a session skips pending and
// rejected conflicts unless the request asks to accept them wholesale.
package mergeapi
