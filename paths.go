package ftp

import (
	"os"
	"path/filepath"
	"strings"
)

// RemoteBaseName returns everything after the last '/' or '\' in a remote path.
func RemoteBaseName(remotePath string) string {
	return remotePath[strings.LastIndexAny(remotePath, `/\`)+1:]
}

// ResolveLocalPath decides where a download of remotePath is written.
//
//   - empty localPath: the remote file name in the current directory
//   - localPath is an existing directory, or ends in a path separator:
//     the remote file name is appended to it
//   - anything else is used as given
func ResolveLocalPath(remotePath, localPath string) string {
	name := RemoteBaseName(remotePath)
	if localPath == "" {
		return "." + string(filepath.Separator) + name
	}
	if strings.HasSuffix(localPath, "/") || strings.HasSuffix(localPath, string(filepath.Separator)) {
		return filepath.Join(localPath, name)
	}
	if info, err := os.Stat(localPath); err == nil && info.IsDir() {
		return filepath.Join(localPath, name)
	}
	return localPath
}
