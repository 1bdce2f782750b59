package storage

import (
	"fmt"
	"path"
	"strings"
	"time"
)

// ObjectPath builds "<owner>/<unix millis>_<file name>".
func ObjectPath(owner, fileName string, now time.Time) string {
	return fmt.Sprintf("%s/%d_%s", owner, now.UnixMilli(), SafeFileName(fileName))
}

// SafeFileName keeps the base name and drops path separators.
func SafeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}
