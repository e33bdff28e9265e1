package scribe

// Inbound and outbound wire messages for the realtime transcription socket.
// The discriminator field is message_type on both directions.

const (
	messageInputAudioChunk                   = "input_audio_chunk"
	messageSessionStarted                    = "session_started"
	messagePartialTranscript                 = "partial_transcript"
	messageCommittedTranscript               = "committed_transcript"
	messageCommittedTranscriptWithTimestamps = "committed_transcript_with_timestamps"
	messageError                             = "error"
)

// audioChunkMessage carries one capture buffer as base64 PCM. An empty chunk
// with Commit set is the end-of-stream marker.
type audioChunkMessage struct {
	MessageType string `json:"message_type"`
	AudioBase64 string `json:"audio_base_64"`
	Commit      bool   `json:"commit,omitempty"`
}

type inboundMessage struct {
	MessageType string `json:"message_type"`
	Text        string `json:"text,omitempty"`
	Error       string `json:"error,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ServerError is a transcription-service error relayed through the error
// callback. It does not itself close the channel.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string { return e.Message }
