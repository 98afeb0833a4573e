// Package photoapi provides an HTTP client for the photo search API.
//
// # Overview
//
// The API is a thin gateway in front of the recognition and indexing
// service. shutter only needs two endpoints:
//
//   - GET <base>/search?q=<query>: natural-language search, answers
//     {"results": ["<uri>", ...]}
//   - PUT <base>/upload/<file name>: stores the raw image bytes, optionally
//     tagged with custom labels
//
// The base URL may carry a path prefix (an API Gateway stage such as
// /prod); endpoint paths are appended below it.
//
// # Client Usage
//
//	client, err := photoapi.NewClient(cfg.APIURL, cfg.APIKey, photoapi.WithLogger(logger))
//	if err != nil {
//		return fmt.Errorf("init api client: %w", err)
//	}
//
//	resp, err := client.Search(ctx, "dogs on the beach")
//
//	err = client.Upload(ctx, photoapi.UploadRequest{
//		FileName:    "vacation.png",
//		ContentType: "image/png",
//		Body:        data,
//		Labels:      []string{"beach", "2024"},
//	})
//
// # Request Handling
//
// All requests:
//   - Carry the static x-api-key header
//   - Include User-Agent: shutter/0.1
//   - Get a fresh request id, attached to every log record about them
//   - Have no client-side timeout; the caller's context is the only bound
//
// Uploads send the body byte-for-byte with an exact Content-Length. When
// labels are present they travel as a single comma-joined
// x-amz-meta-customLabels header. Labels are not escaped, so an embedded
// comma splits a label in two on the server side.
//
// # Error Handling
//
//   - Transport failures: wrapped as "execute request: ..."
//   - Failure statuses: *APIError, carrying the server's {"message": ...}
//     when the body has one. Without a message, Error() reads
//     "request failed with status code <N>".
//   - Undecodable search bodies: wrap ErrMalformedResponse
//
// Search accepts any 2xx status. Upload accepts only 200.
//
// # Thread Safety
//
// The Client is safe for concurrent use.
package photoapi
