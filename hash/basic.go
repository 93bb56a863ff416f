// Copyright 2018 IBM Corporation
// Licensed under the Apache License, Version 2.0. See LICENSE file.

package hash

import (
	"fmt"
	"hash"
	"io"
	"log"
)

// BasicHasher is an AsyncHash that feeds every Write through a pipe into a
// wrapped hash.Hash and delivers the finalized Digest on a channel
type BasicHasher struct {
	hash.Hash
	done        chan Digest
	result      Digest
	r           io.ReadCloser
	w           io.WriteCloser
	bytesHashed int64
}

var _ AsyncHash = &BasicHasher{}

// Done returns a Digest channel, satisfying the AsyncHasher interface
func (sh BasicHasher) Done() <-chan Digest {
	return sh.done
}

// Digest blocks until the hash is finished and returns the calculated Digest.
// It consumes the single value sent on the channel returned by Done(), so only
// the first of Digest() or a receive from Done() gets the Digest; a later
// call blocks.
func (sh BasicHasher) Digest() Digest {
	// block until the digest is finished
	d, ok := <-sh.Done()
	if ok {
		fmt.Printf("read from channel")
		return d
	}
	fmt.Printf("channel was empty")
	return sh.result
}

// Write adds the given slice to the internal Hash
func (sh BasicHasher) Write(bytes []byte) (int, error) {
	return sh.w.Write(bytes)
}

// Close closes the underlying pipe and finalizes the hash
func (sh BasicHasher) Close() error {
	return sh.w.Close()
}

func newBasicHasher(wrapper *BasicHasher, hasher hash.Hash, digester func(hash.Hash) Digest) {
	wrapper.Hash = hasher
	wrapper.done = make(chan Digest, 0)
	wrapper.r, wrapper.w = io.Pipe()
	go func() {
		defer wrapper.r.Close()
		n, err := io.Copy(wrapper.Hash, wrapper.r)
		if err != nil {
			log.Fatal(err)
		}
		wrapper.bytesHashed = n
		wrapper.result = digester(wrapper.Hash)
		wrapper.done <- wrapper.result
	}()
}
