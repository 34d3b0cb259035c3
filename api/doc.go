// Package api provides the HTTP REST API of the Hazard Maze server.
//
// Endpoints:
//
// Accounts:
//   - POST /api/auth/register - {username, password}; 400 on failure
//   - POST /api/auth/login - {username, password}; 401 on bad credentials
//
// Maze:
//   - POST /api/maze/init - {userId, width?, height?, preset?, seed?}; 400 on failure
//   - GET /api/maze/{userId} - current maze and player position; 404 without a maze
//   - POST /api/maze/move - {userId, x, y}; 400 on rejection
//   - GET /api/maze/{userId}/history - ?page=&limit=&order=asc|desc
//
// Presets:
//   - GET /api/presets - list presets
//   - GET /api/presets/{name} - full preset
//   - POST /api/presets - save a preset
//
// Other:
//   - GET /api/health
//   - GET /ws?user=<id> - WebSocket state updates for a user's maze
//
// Errors:
//
// Failures are JSON with a success flag:
//
//	{"success": false, "error": "message"}
//
// A rejected move also carries the machine-readable code and the unchanged
// position:
//
//	{"success": false, "error": "You can't walk through walls!", "code": "blocked", "playerPos": {"x": 1, "y": 1}}
//
// Every response carries an X-Request-ID header, echoed from the request when
// present, and every request is logged through logrus with that id.
package api
