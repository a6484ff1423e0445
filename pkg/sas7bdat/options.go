package sas7bdat

import "github.com/rs/zerolog"

// DefaultChunkSize is the batch size used for chunk sinks that do not
// choose one.
const DefaultChunkSize = 10000

type options struct {
	filter    Filter
	chunkSize int
	logger    *zerolog.Logger
	filename  string
}

// Option configures a Reader.
type Option func(*options)

// WithInclude retains only the named columns.
func WithInclude(names ...string) Option {
	return func(o *options) { o.filter.Include = append(o.filter.Include, names...) }
}

// WithExclude drops the named columns.
func WithExclude(names ...string) Option {
	return func(o *options) { o.filter.Exclude = append(o.filter.Exclude, names...) }
}

// WithFilter replaces the column filter.
func WithFilter(f Filter) Option {
	return func(o *options) { o.filter = f }
}

// WithChunkSize sets the batch size for chunk sinks.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithLogger sets the logger used for decode diagnostics.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = &l }
}

// WithFilename records the file name in the reported properties.
func WithFilename(name string) Option {
	return func(o *options) { o.filename = name }
}
