package installer

import (
	"os"
	"path/filepath"
	"strings"

	"appimage-installer/internal/apperr"

	"github.com/gabriel-vasile/mimetype"
)

// executableTypes are the MIME types accepted as installable bundles
var executableTypes = []string{
	"application/x-executable",
	"application/x-sharedlib", // position-independent executables
	"application/x-elf",
	"text/x-shellscript",
}

// ValidateBundle checks that path is an executable file and returns its MIME
// type.
func ValidateBundle(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", apperr.Validationf("%s does not exist", filepath.Base(path))
	}
	if info.IsDir() {
		return "", apperr.Validationf("%s is a directory", filepath.Base(path))
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", apperr.Validationf("cannot read %s: %v", filepath.Base(path), err)
	}

	if mtype.Is("application/x-object") || mtype.Is("application/x-coredump") {
		return "", apperr.Validationf("%s is not an executable file (%s)", filepath.Base(path), mtype.String())
	}
	for m := mtype; m != nil; m = m.Parent() {
		for _, accepted := range executableTypes {
			if m.Is(accepted) {
				return mtype.String(), nil
			}
		}
	}
	return "", apperr.Validationf("%s is not an executable file (%s)", filepath.Base(path), mtype.String())
}

// AppName derives the app name from the bundle file name
func AppName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

// singleLine rejects values that would spill into further desktop entry keys
func singleLine(field, value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return apperr.Validationf("%s %q cannot contain line breaks", field, value)
	}
	return nil
}
