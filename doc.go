// Package folio provides the core of a small image gallery: user accounts
// with session tokens, image metadata kept in a single persisted document,
// and pluggable storage for the uploaded bytes.
//
// # Key Components
//
//   - DataStore: serializes load-modify-save cycles over a DocumentRepo
//   - DocumentRepo: Interface for document persistence (JSON file, SQLite, PostgreSQL)
//   - AuthService: bcrypt password hashing, session tokens, admin bootstrap
//   - MediaStore: LocalMedia keeps bytes on disk, RemoteMedia mirrors them to a Bucket
//   - GalleryCatalog: keeps the global image list and per-user galleries in sync
//   - Service: the operations exposed to the HTTP layer
//
// # Example Usage
//
//	store := folio.NewDataStore(repo)
//	auth := folio.NewAuthService(store, folio.AuthConfig{AdminUsername: "admin"})
//	catalog := folio.NewGalleryCatalog(store, auth.IsAdmin)
//	media := folio.NewLocalMedia(filesystem.NewFileStorage(root))
//
//	service, err := folio.NewService(auth, catalog, media, folio.ServiceConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	token, err := service.Login(ctx, "admin", password)
//	result, err := service.Upload(ctx, token, folio.UploadRequest{
//	    Content:      f,
//	    OriginalName: "cat.png",
//	    ContentType:  "image/png",
//	})
//
// See the http package for the REST API and the datastore package for the
// document backends.
package folio
