// Package source provides the listings a scan draws its file references from.
//
// Every source is consumed lazily, one reference at a time, and applies the
// include/exclude filters and listing options of a scantypes.ListConfig.
// Sources are not safe for concurrent use; the scan serializes calls to Next.
package source
