package aisdk

import (
	"errors"
	"io"
	"strings"
)

// StreamCallback receives each chunk of a streamed completion in order.
type StreamCallback func(chunk *StreamChunk) error

// StreamToCallback drains a stream into the callback, closing the stream
// when done. A nil chunk or io.EOF ends the stream cleanly; a callback
// error aborts the drain and is returned as is.
func StreamToCallback(stream StreamInterface, callback StreamCallback) error {
	defer stream.Close()

	for {
		chunk, err := stream.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if chunk == nil {
			return nil
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}
}

// CollectStreamContent drains a stream and returns the concatenated text.
func CollectStreamContent(stream StreamInterface) (string, error) {
	var content strings.Builder
	err := StreamToCallback(stream, func(chunk *StreamChunk) error {
		content.WriteString(chunk.DeltaText())
		return nil
	})
	return content.String(), err
}
