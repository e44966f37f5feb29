// Package imaging provides the pixel operations shared by the card classifiers.
//
// This package wraps disintegration/imaging, anthonynsimon/bild and
// lucasb-eyer/go-colorful behind a small set of functions that operate on
// standard Go image.Image values: bounds-checked cropping, proportional inset
// crops, grayscale conversion, gaussian blur, HSV conversion and HSV range
// masks, and PNG encoding for diagnostic output.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For rectangles, Min is inclusive (top-left) and Max is exclusive
//     (bottom-right), following image.Rectangle
//
// Images returned by Crop and CropRelative are re-based so that their bounds
// start at (0,0), regardless of where the region sat in its parent image.
// Callers keep card crops 0-based so that filter output is 0-based too.
//
// # HSV Scale
//
// HSV values use the 8-bit OpenCV convention so calibration tables can be
// copied from OpenCV tooling unchanged:
//   - H: 0-180 (hue in degrees divided by two)
//   - S: 0-255
//   - V: 0-255
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. All other functions are
// stateless and never mutate their input images, so they can be called
// concurrently on shared read-only images.
package imaging
