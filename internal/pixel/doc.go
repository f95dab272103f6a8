// Package pixel provides the raw pixel buffer the tile engine operates on,
// along with conversion to and from standard Go image types and the file
// collaborator used to load and persist buffers.
//
// # Buffer Layout
//
// A Buffer stores Width*Height pixels in row-major order, each pixel made of
// Channels uniform 8-bit samples. Supported channel counts are:
//   - 1: grayscale
//   - 3: RGB (opaque)
//   - 4: non-premultiplied RGBA
//
// The tile engine itself never interprets samples; it only copies fixed-size
// rectangular regions. Channel meaning matters only when a buffer is converted
// to an image.Image for a filter or for encoding.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with the origin at the top-left corner.
// For regions, (x, y) is inclusive and (x+width, y+height) is exclusive.
//
// # Thread Safety
//
// A Buffer has no internal locking. Concurrent readers are safe; writers must
// own a region exclusively. The ImageCache type is safe for concurrent use.
package pixel
