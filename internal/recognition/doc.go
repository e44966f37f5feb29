// Package recognition turns captured card pixels into symbolic card identities.
//
// The pipeline runs in one direction for every capture cycle:
//
//  1. Capture: the Session samples each configured screen region
//  2. Split: multi-card regions are cut into per-slot crops at fixed offsets
//  3. Classify: the RankClassifier and SuitClassifier score the same crop
//     independently of each other
//  4. Aggregate: the Recognizer applies the acceptance Policy and builds a
//     RecognizedSlot, which carries a Card only when both rank and suit
//     resolved
//
// # Rank Classification
//
// Ranks are found by template matching. The crop is converted to grayscale
// and every template is slid over it; each position is scored with the
// zero-mean normalized cross-correlation (OpenCV's TM_CCOEFF_NORMED) and the
// template's score is its best position. Scores lie in [-1, 1]. The winner is
// the first template, in rank enumeration order (A, K, Q, J, 10 ... 2), whose
// score is strictly higher than every earlier one and than zero. Exact ties
// therefore go to the earlier rank. The result also reports the runner-up and
// the winning margin so that a Policy can demand separation.
//
// # Suit Classification
//
// Suits are found by color. A proportional window of the crop (by default the
// lower 45% of the middle 40% of the width, where the suit pip sits) is
// converted to HSV, blurred channel by channel and tested against one HSV
// range per suit. The suit with the most matching pixels wins; exact ties go
// to the earlier suit in the order spades, hearts, diamonds, clubs.
// Confidence is the raw pixel count; Coverage is that count divided by the
// window's area.
//
// # Failure Policy
//
// Classification uncertainty is data: an unresolved slot has a nil Card, never
// a placeholder. Only capture failures and configuration errors are returned
// as errors. Debug sinks receive every crop but can never fail or delay a
// recognition; their errors are logged and dropped.
//
// # Concurrency
//
// Classifiers, Recognizers and Sessions hold only read-only state after
// construction and are safe for concurrent use. Every call captures fresh
// pixels and owns them exclusively.
package recognition
