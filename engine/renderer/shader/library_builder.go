package shader

import "io/fs"

// LibraryBuilderOption is a function that configures a Library during construction.
type LibraryBuilderOption func(*library)

// WithSourceFS is an option builder that reads programs from fsys instead of
// the embedded copies. Files are named <program>.wgsl at the root of fsys.
//
// Parameters:
//   - fsys: the file system holding the program sources, e.g. os.DirFS(dir)
//
// Returns:
//   - LibraryBuilderOption: a function that applies the source option to a library
func WithSourceFS(fsys fs.FS) LibraryBuilderOption {
	return func(l *library) {
		l.fsys = fsys
	}
}

// WithDefaultDefines is an option builder that appends pre-processor options
// applied to every Load before the caller's own.
//
// Parameters:
//   - opts: pre-processor options such as WithLightingMode
//
// Returns:
//   - LibraryBuilderOption: a function that applies the defaults to a library
func WithDefaultDefines(opts ...PreProcessorBuilderOption) LibraryBuilderOption {
	return func(l *library) {
		l.defaults = append(l.defaults, opts...)
	}
}
