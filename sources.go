package linescan

import (
	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/minioapi"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/opener"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/source"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/internal/validation"
	"github.com/input-output-hk/catalyst-forge-libs/linescan/scantypes"
)

// FileRef identifies one object to be scanned.
type FileRef = scantypes.FileRef

// SliceSource yields refs in order.
func SliceSource(refs ...FileRef) scantypes.Source {
	return source.NewSlice(refs...)
}

// DirSource lists every regular file below root on fsys, in lexical order.
// Keys are the slash-separated paths of the files on fsys.
func DirSource(fsys billy.Filesystem, root string, opts ...scantypes.ListOption) (scantypes.Source, error) {
	cfg, err := listConfig(opts)
	if err != nil {
		return nil, err
	}
	return source.NewDir(fsys, root, cfg)
}

// DirOpener opens keys as paths on fsys.
func DirOpener(fsys billy.Filesystem) scantypes.Opener {
	return opener.NewDir(fsys)
}

// MinioSource lists the objects of bucket under prefix through a MinIO
// client, typically a *minio.Client. The listing runs in the background
// until it is exhausted or the scan is closed.
func MinioSource(
	client minioapi.Client,
	bucket, prefix string,
	opts ...scantypes.ListOption,
) (scantypes.Source, error) {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return nil, err
	}
	if err := validation.ValidatePrefix(prefix); err != nil {
		return nil, err
	}
	cfg, err := listConfig(opts)
	if err != nil {
		return nil, err
	}
	return source.NewMinio(client, bucket, prefix, cfg)
}

// MinioOpener opens objects through a MinIO client.
func MinioOpener(client minioapi.Client) scantypes.Opener {
	return opener.NewMinio(client)
}

func listConfig(opts []scantypes.ListOption) (scantypes.ListConfig, error) {
	var cfg scantypes.ListConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validation.ValidateListConfig(&cfg); err != nil {
		return scantypes.ListConfig{}, err
	}
	return cfg, nil
}
