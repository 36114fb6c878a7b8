package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

const (
	MinAudioBytes = 1000
	MaxAudioBytes = 16 * 1024 * 1024
)

// TranscriptionErrorCode 轉錄失敗的分類
type TranscriptionErrorCode string

const (
	CodeFileTooLarge        TranscriptionErrorCode = "FILE_TOO_LARGE"
	CodeInvalidFormat       TranscriptionErrorCode = "INVALID_FORMAT"
	CodeTranscriptionFailed TranscriptionErrorCode = "TRANSCRIPTION_FAILED"
	CodeServiceError        TranscriptionErrorCode = "SERVICE_ERROR"
)

type TranscriptionError struct {
	Code    TranscriptionErrorCode `json:"code"`
	Message string                 `json:"error"`
	Details string                 `json:"details,omitempty"`
}

func (e *TranscriptionError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type TranscriptionRequest struct {
	Audio    []byte
	MimeType string
	Language string
	Prompt   string
}

type TranscriptionSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcription 對應 Whisper verbose_json 的回應
type Transcription struct {
	Language string                 `json:"language"`
	Duration float64                `json:"duration"`
	Text     string                 `json:"text"`
	Segments []TranscriptionSegment `json:"segments"`
}

// Transcriber 失敗時回傳 *TranscriptionError
type Transcriber interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error)
}

var audioExtensions = map[string]string{
	"audio/webm":             "webm",
	"audio/webm;codecs=opus": "webm",
	"audio/mp3":              "mp3",
	"audio/mpeg":             "mp3",
	"audio/wav":              "wav",
	"audio/ogg":              "ogg",
	"audio/mp4":              "m4a",
}

// AudioExtension 依 MIME 類型決定上傳檔名的副檔名，未知類型視為 webm
func AudioExtension(mimeType string) string {
	if ext, ok := audioExtensions[strings.ToLower(strings.ReplaceAll(mimeType, " ", ""))]; ok {
		return ext
	}
	return "webm"
}

// ValidateAudioSize 檢查音訊大小是否在 1KB 到 16MB 之間
func ValidateAudioSize(size int) *TranscriptionError {
	if size > MaxAudioBytes {
		return &TranscriptionError{
			Code:    CodeFileTooLarge,
			Message: "Audio file exceeds maximum size limit",
			Details: fmt.Sprintf("File size is %.2fMB, maximum allowed is 16MB", float64(size)/(1024*1024)),
		}
	}
	if size < MinAudioBytes {
		return &TranscriptionError{
			Code:    CodeInvalidFormat,
			Message: "Audio file too small",
			Details: fmt.Sprintf("File size is %d bytes, minimum is 1KB", size),
		}
	}
	return nil
}

func defaultPrompt(language string) string {
	if language != "" {
		return fmt.Sprintf("Transcribe this debate speech clearly. The speaker is using %s.", language)
	}
	return "Transcribe this debate speech clearly and accurately."
}

func (c *Client) Transcribe(ctx context.Context, req TranscriptionRequest) (*Transcription, error) {
	endpoint, err := c.endpoint("v1/audio/transcriptions")
	if err != nil {
		return nil, &TranscriptionError{Code: CodeServiceError, Message: "Transcription service not configured", Details: err.Error()}
	}
	if verr := ValidateAudioSize(len(req.Audio)); verr != nil {
		return nil, verr
	}

	mimeType := req.MimeType
	if mimeType == "" {
		mimeType = "audio/webm"
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = defaultPrompt(req.Language)
	}

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	file, err := form.CreateFormFile("file", "audio."+AudioExtension(mimeType))
	if err != nil {
		return nil, serviceError(err)
	}
	if _, err := file.Write(req.Audio); err != nil {
		return nil, serviceError(err)
	}
	fields := map[string]string{
		"model":           c.transcriptionModel,
		"response_format": "verbose_json",
		"prompt":          prompt,
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	for k, v := range fields {
		if err := form.WriteField(k, v); err != nil {
			return nil, serviceError(err)
		}
	}
	if err := form.Close(); err != nil {
		return nil, serviceError(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, serviceError(err)
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept-Encoding", "identity")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, serviceError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &TranscriptionError{
			Code:    CodeTranscriptionFailed,
			Message: "Transcription service request failed",
			Details: strings.TrimSpace(fmt.Sprintf("%s %s", resp.Status, text)),
		}
	}

	var result Transcription
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Text == "" {
		return nil, &TranscriptionError{
			Code:    CodeServiceError,
			Message: "Invalid transcription response",
			Details: "Whisper API returned invalid response format",
		}
	}
	return &result, nil
}

func serviceError(err error) *TranscriptionError {
	return &TranscriptionError{Code: CodeServiceError, Message: "Transcription failed", Details: err.Error()}
}
