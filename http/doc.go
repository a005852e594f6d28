// Package http provides the HTTP API of the folio gallery.
//
// # Routes
//
//	POST   /api/register           create an account           {"ok":true}
//	POST   /api/login              issue a session token       {"token":"..."}
//	POST   /api/logout             revoke the bearer token     {"ok":true}
//	GET    /api/me                 current user                {"username":"..."}
//	POST   /api/upload             multipart field "image"     {"ok":true,"file":{...},"degraded":false}
//	GET    /api/images             every image record
//	GET    /api/galleries/{user}   one user's gallery
//	GET    /api/files              images physically on disk
//	DELETE /api/images/{filename}  remove an image             204
//	GET    /api/health             document counts and backend
//	GET    /uploads/{key}          locally stored image bytes
//
// Register and login accept a JSON body or a url-encoded form with username
// and password fields. Authenticated routes read "Authorization: Bearer
// <token>"; the token itself is validated by the Service.
//
// # Errors
//
// Failures are reported as JSON:
//
//	{"error": "username_taken", "message": "Username already exists"}
//
// folio.ErrInvalidInput and folio.ErrNoFile map to 400, bad credentials and
// tokens to 401, folio.ErrForbidden to 403, folio.ErrNotFound to 404,
// folio.ErrUsernameTaken to 409 and oversized uploads to 413. Anything else
// is logged and reported as 500.
//
// # Usage
//
//	handler := http.NewHandler(&http.HandlerConfig{MaxUploadSize: 10 << 20}, service)
//	srv := &nethttp.Server{Addr: ":3000", Handler: handler.Router()}
//	srv.ListenAndServe()
package http
