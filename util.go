package bolt

import "fmt"

// sprintByteHex dumps bytes as hex, 16 per line, for trace logging
func sprintByteHex(b []byte) string {
	output := "\n\t"
	for i, x := range b {
		output += fmt.Sprintf("%02x ", x)
		if (i+1)%16 == 0 {
			output += "\n\t"
		}
	}
	return output + "\n"
}
