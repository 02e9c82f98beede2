package asm

import "sort"

// Segment is a contiguous run of words starting at Start. The final
// image is a sorted, fixed-point merge of adjacent segments.
type Segment struct {
	Start uint16
	Words []uint16
}

// End is the address one past the segment's last word.
func (s Segment) End() uint16 {
	return s.Start + uint16(2*len(s.Words))
}

// Image is the resolved output of the assembler: the merged segment
// list, the program's entry address, and the label map (kept around
// for the listing generator).
type Image struct {
	Segments []Segment
	PCStart  uint16
	Labels   map[string]uint16
}

// mergeSegments sorts by start address and repeatedly merges adjacent
// segments where prev.End() == next.Start, until a fixed point: no
// two segments in the result satisfy that relation.
func mergeSegments(segs []Segment) []Segment {
	sorted := append([]Segment(nil), segs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for {
		merged := make([]Segment, 0, len(sorted))
		changed := false
		for _, s := range sorted {
			if len(merged) > 0 && merged[len(merged)-1].End() == s.Start {
				last := merged[len(merged)-1]
				last.Words = append(append([]uint16(nil), last.Words...), s.Words...)
				merged[len(merged)-1] = last
				changed = true
				continue
			}
			merged = append(merged, s)
		}
		sorted = merged
		if !changed {
			return sorted
		}
	}
}

// Encode renders the image to the binary format of spec §6.1: a
// 0xFFFF magic, a big-endian segment count, then per segment a
// big-endian start address, a big-endian byte length, and the words
// themselves big-endian (high byte first).
func (img *Image) Encode() []byte {
	out := make([]byte, 0, 4)
	out = append(out, 0xFF, 0xFF)
	out = appendU16(out, uint16(len(img.Segments)))
	for _, s := range img.Segments {
		out = appendU16(out, s.Start)
		out = appendU16(out, uint16(len(s.Words)*2))
		for _, w := range s.Words {
			out = appendU16(out, w)
		}
	}
	return out
}

func appendU16(b []byte, v uint16) []byte {
	return append(b, byte(v>>8), byte(v))
}
