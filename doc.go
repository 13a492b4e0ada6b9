// Package linescan provides a parallel, memory-bounded line scanner over
// collections of remote text objects.
//
// A scan starts from a single Worker. Workers can be split with TrySplit,
// and every worker produced this way shares three structures with the
// others: a queue of files waiting to be opened, a pool of open streams
// parked between reads, and a bounded buffer of decoded records. Each
// worker is advanced with TryAdvance until it reports that it is exhausted.
// Together the workers read every file exactly once, and no more than a
// configurable number of records is buffered per refill.
//
// Key features:
//   - Works over S3, MinIO, billy filesystems or any custom Source and Opener
//   - Split/advance protocol independent of how goroutines are scheduled
//   - Per-file record order preserved for every consumer
//   - Context-aware blocking with a randomized wait for parked streams
//   - Optional local caching and transparent gzip/zstd decompression
//   - Plain lines, custom delimiters or JSON lines decoding
//
// Example usage:
//
//	client, err := linescan.New(linescan.WithRegion("us-west-2"))
//	if err != nil {
//	    return err
//	}
//
//	root, err := client.Lines(ctx, "my-bucket", "logs/2024/")
//	if err != nil {
//	    return err
//	}
//	defer root.Close()
//
//	err = linescan.ForEach(ctx, root, 8, func(rec linescan.Record[string]) error {
//	    fmt.Println(rec.File.Key, rec.Line)
//	    return nil
//	})
package linescan
