// Package imaging decodes lab-report images and prepares them for OCR.
//
// The package has three parts:
//   - Decoding: Decode and DecodeWithInfo turn raw bytes into an image.Image,
//     applying EXIF orientation so phone photos come out upright.
//   - Preprocessing: Preprocessor turns a photo or scan into a clean binary
//     image with black ink on white paper (see PreprocessConfig).
//   - Output: EncodePNG and Preview produce PNG bytes or a base64 preview for
//     inspecting what the OCR engine will see.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner. For
// regions, (x1,y1) is inclusive and (x2,y2) is exclusive.
//
// # Thread Safety
//
// Every function is stateless and safe for concurrent use. A Preprocessor
// holds only its configuration and can be shared between goroutines.
//
// # Error Handling
//
// Bytes that no registered decoder accepts yield an error wrapping ErrDecode.
// Preprocessing itself cannot fail.
package imaging
