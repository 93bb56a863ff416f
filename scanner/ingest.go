// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package scanner

import (
	"archive/tar"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	units "github.com/docker/go-units"
	"github.com/gofrs/flock"
	"github.com/pkg/errors"

	"github.com/containerwarden/warden/record"
)

// manifestEntry mirrors the first element of the manifest.json array inside
// a `docker save`-style image tar: a JSON config filename plus the ordered
// list of layer tar paths that make up the image's rootfs.
type manifestEntry struct {
	Config string   `json:"Config"`
	Layers []string `json:"Layers"`
}

// Ingestor walks a container image's layers, classifies every file as
// executable or not, and commits discovered fingerprints to a
// record.Store. The scratch directories it uses (saved_image, unpack/, out/)
// are fixed paths under scratchDir, guarded by an flock so a second process
// using the same scratchDir blocks rather than corrupting another
// ingestion's scratch state. The flock belongs to the Ingestor, so it does
// not serialize concurrent Ingest calls on the same Ingestor.
type Ingestor struct {
	engine    Engine
	store     record.Store
	scratchDir string
	lock      *flock.Flock
}

// NewIngestor creates an Ingestor that stages its scratch files under
// scratchDir (created if absent).
func NewIngestor(engine Engine, store record.Store, scratchDir string) *Ingestor {
	return &Ingestor{
		engine:     engine,
		store:      store,
		scratchDir: scratchDir,
		lock:       flock.New(filepath.Join(scratchDir, ".ingest.lock")),
	}
}

// Ingest populates store with fingerprints for digest, following the
// protocol: short-circuit if already hashed, export, unpack the outer
// archive, apply layers cumulatively into one scratch directory, walk once
// for executables, mark_hashed, then clean up. A failure at any step before
// mark_hashed leaves the image re-ingestible on the next call.
func (ing *Ingestor) Ingest(ctx context.Context, digest record.ImageDigest) error {
	hashed, err := ing.store.IsHashed(ctx, digest)
	if err != nil {
		return err
	}
	if hashed {
		return nil
	}

	log.Infof("Found new container, reading image %s", digest)

	if err := os.MkdirAll(ing.scratchDir, 0700); err != nil {
		return err
	}
	if err := ing.lock.Lock(); err != nil {
		return err
	}
	defer ing.lock.Unlock()

	savedImage := filepath.Join(ing.scratchDir, "saved_image")
	unpackDir := filepath.Join(ing.scratchDir, "unpack")
	outDir := filepath.Join(ing.scratchDir, "out")
	defer os.RemoveAll(savedImage)
	defer os.RemoveAll(unpackDir)
	defer os.RemoveAll(outDir)

	if err := ing.export(ctx, digest, savedImage); err != nil {
		return errors.Wrapf(err, "exporting image %s", digest)
	}
	if err := unpackTar(savedImage, unpackDir); err != nil {
		return errors.Wrapf(err, "unpacking exported image %s", digest)
	}
	if err := os.Remove(savedImage); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("failed to remove scratch archive")
	}

	layers, err := readManifestLayers(filepath.Join(unpackDir, "manifest.json"))
	if err != nil {
		return errors.Wrapf(err, "reading manifest for image %s", digest)
	}
	if len(layers) == 0 {
		return errors.New("image manifest has no layers")
	}

	// Layers are applied cumulatively into the same out/ directory so that a
	// later layer's version of a path always overwrites an earlier one
	// (I4). Walking once after every layer has landed is equivalent to
	// walking after each layer and relies on put_fingerprint's upsert
	// semantics, but is cheaper.
	for _, layer := range layers {
		layerTar := filepath.Join(unpackDir, layer)
		if err := unpackTarTolerant(layerTar, outDir); err != nil {
			return err
		}
	}

	if err := ing.walkAndFingerprint(ctx, digest, outDir); err != nil {
		return err
	}

	if err := ing.store.MarkHashed(ctx, digest); err != nil {
		return err
	}

	log.Infof("Finished reading image %s", digest)
	return nil
}

func (ing *Ingestor) export(ctx context.Context, digest record.ImageDigest, dest string) error {
	stream, err := ing.engine.ExportImage(ctx, digest)
	if err != nil {
		return err
	}
	defer stream.Close()

	f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	n, err := io.Copy(f, stream)
	if err != nil {
		return err
	}
	log.Debugf("exported image %s (%s)", digest, units.HumanSize(float64(n)))
	return nil
}

func readManifestLayers(manifestPath string) ([]string, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, err
	}
	var manifest []manifestEntry
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, err
	}
	if len(manifest) == 0 {
		return nil, errors.New("empty image manifest")
	}
	// Layer ordering ambiguity across multiple manifest entries is not
	// disambiguated; the first element is used unconditionally.
	return manifest[0].Layers, nil
}

// walkAndFingerprint walks dir recursively, classifying and hashing every
// executable it finds, and commits each as a fingerprint under digest with
// the outDir prefix stripped so paths read as they would inside the
// container's own rootfs.
func (ing *Ingestor) walkAndFingerprint(ctx context.Context, digest record.ImageDigest, dir string) error {
	return filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			// a single unreadable entry does not abort the whole walk
			log.WithError(err).Debugf("skipping unreadable entry %s", p)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !IsExecutable(p) {
			return nil
		}
		h, err := HashFile(p)
		if err != nil {
			log.WithError(err).Debugf("skipping unhashable entry %s", p)
			return nil
		}

		inImagePath := "/" + strings.TrimPrefix(strings.TrimPrefix(p, dir), string(filepath.Separator))
		return ing.store.PutFingerprint(ctx, digest, inImagePath, h)
	})
}

// unpackTar extracts every entry of the tar at tarPath into destDir. A
// malformed header aborts unpacking: this is the outer archive and a
// truncated/corrupt download should fail ingestion outright.
func unpackTar(tarPath, destDir string) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := extractEntry(tr, hdr, destDir); err != nil {
			return err
		}
	}
}

// unpackTarTolerant is identical to unpackTar except that a failure
// extracting a single entry within the layer is skipped rather than
// aborting the whole layer, matching the ingestion protocol's tolerance for
// partial layer corruption.
func unpackTarTolerant(tarPath, destDir string) error {
	f, err := os.Open(tarPath)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return err
	}

	tr := tar.NewReader(f)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := extractEntry(tr, hdr, destDir); err != nil {
			log.WithError(err).Debugf("skipping layer entry %s", hdr.Name)
			continue
		}
	}
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, destDir string) error {
	target := filepath.Join(destDir, hdr.Name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(filepath.Separator)) {
		return errors.New("tar entry escapes destination: " + hdr.Name)
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return err
		}
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, os.FileMode(hdr.Mode)&0777)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, tr)
		return err
	case tar.TypeSymlink:
		os.Remove(target)
		return os.Symlink(hdr.Linkname, target)
	default:
		// whiteout markers and other special entries are not part of the
		// executable-fingerprinting domain; ignored rather than failed.
		return nil
	}
}
