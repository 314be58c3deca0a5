package model

// appendStatusLine appends a line to a newline-delimited status log.
func appendStatusLine(status, line string) string {
	if status == "" {
		return line
	}
	return status + "\n" + line
}
