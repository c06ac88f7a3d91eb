//go:build !unix

package locator

import "os"

func isExecutable(_ string, info os.FileInfo) bool {
	return info != nil && info.Mode().IsRegular()
}
