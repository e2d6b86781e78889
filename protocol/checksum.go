package protocol

// Checksum computes the protocol trailer byte: the modulo-256 sum of the
// header fields followed by the payload bytes, bit inverted (1's
// complement). Both framing variants use it, in both directions.
func Checksum(fields, data []byte) byte {
	var sum uint8
	for _, b := range fields {
		sum += b
	}
	for _, b := range data {
		sum += b
	}
	return ^sum
}
