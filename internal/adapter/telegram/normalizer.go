package telegram

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gemini-telegram-bot/internal/domain"
)

type contentKind int

const (
	kindNone contentKind = iota
	kindText
	kindImage
	kindFile
	kindVoice
	kindAudio
	kindVideo
)

// Downloader resolves a Telegram file handle to raw bytes.
type Downloader interface {
	Download(fileID string) ([]byte, error)
}

type botDownloader struct {
	api *tgbotapi.BotAPI
}

func (d *botDownloader) Download(fileID string) ([]byte, error) {
	file, err := d.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file %s: %w", fileID, err)
	}

	resp, err := http.Get(file.Link(d.api.Token)) // #nosec G107
	if err != nil {
		return nil, fmt.Errorf("download file %s: %w", fileID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file %s: status %d", fileID, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// DefaultPrompts are the captionless-media instructions, one per content
// kind, so the model always receives something to do.
type DefaultPrompts struct {
	Image string
	File  string
	Audio string
	Video string
}

// Normalizer converts inbound Telegram messages into provider-agnostic chat
// messages.
type Normalizer struct {
	downloader Downloader
	prompts    DefaultPrompts
	logger     *slog.Logger
}

func NewNormalizer(downloader Downloader, prompts DefaultPrompts, logger *slog.Logger) *Normalizer {
	return &Normalizer{downloader: downloader, prompts: prompts, logger: logger}
}

type detected struct {
	fileID   string
	caption  string
	mimeType string
	fileName string
}

// detectKind resolves the message's primary payload. Telegram messages
// carry at most one attachment category, but images sometimes arrive as
// generic documents with an image mime type, so that check precedes the
// generic-file branch.
func detectKind(msg *tgbotapi.Message) (contentKind, detected) {
	switch {
	case len(msg.Photo) > 0:
		best := msg.Photo[len(msg.Photo)-1]
		return kindImage, detected{fileID: best.FileID, caption: msg.Caption, mimeType: "image/jpeg"}

	case msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/"):
		return kindImage, detected{
			fileID:   msg.Document.FileID,
			caption:  msg.Caption,
			mimeType: msg.Document.MimeType,
			fileName: msg.Document.FileName,
		}

	case msg.Video != nil:
		mimeType := msg.Video.MimeType
		if mimeType == "" {
			mimeType = "video/mp4"
		}
		return kindVideo, detected{
			fileID:   msg.Video.FileID,
			caption:  msg.Caption,
			mimeType: mimeType,
			fileName: msg.Video.FileName,
		}

	case msg.VideoNote != nil:
		return kindVideo, detected{fileID: msg.VideoNote.FileID, caption: msg.Caption, mimeType: "video/mp4"}

	case msg.Document != nil:
		return kindFile, detected{
			fileID:   msg.Document.FileID,
			caption:  msg.Caption,
			mimeType: msg.Document.MimeType,
			fileName: msg.Document.FileName,
		}

	case msg.Voice != nil:
		mimeType := msg.Voice.MimeType
		if mimeType == "" {
			mimeType = "audio/ogg"
		}
		return kindVoice, detected{fileID: msg.Voice.FileID, caption: msg.Caption, mimeType: mimeType}

	case msg.Audio != nil:
		mimeType := msg.Audio.MimeType
		if mimeType == "" {
			mimeType = "audio/mpeg"
		}
		return kindAudio, detected{
			fileID:   msg.Audio.FileID,
			caption:  msg.Caption,
			mimeType: mimeType,
			fileName: msg.Audio.FileName,
		}

	case msg.Text != "":
		return kindText, detected{caption: msg.Text}
	}

	return kindNone, detected{}
}

// Normalize converts a Telegram message into a user chat message, fetching
// attachment bytes and substituting the kind-specific default prompt when
// the caption is absent. A message with nothing usable yields
// domain.ErrUnsupportedContent.
func (n *Normalizer) Normalize(msg *tgbotapi.Message) (domain.ChatMessage, error) {
	kind, meta := detectKind(msg)

	switch kind {
	case kindNone:
		n.logger.Warn("unsupported message content",
			"message_id", msg.MessageID, "chat_id", msg.Chat.ID)
		return domain.ChatMessage{}, domain.ErrUnsupportedContent
	case kindText:
		return domain.ChatMessage{Role: domain.RoleUser, Content: meta.caption}, nil
	}

	data, err := n.downloader.Download(meta.fileID)
	if err != nil {
		return domain.ChatMessage{}, err
	}
	n.logger.Info("attachment downloaded",
		"message_id", msg.MessageID, "size", len(data), "mime_type", meta.mimeType)

	out := domain.ChatMessage{Role: domain.RoleUser, Content: meta.caption}

	switch kind {
	case kindImage:
		if out.Content == "" {
			out.Content = n.prompts.Image
		}
		out.Images = []domain.MediaPart{{Data: data, MimeType: meta.mimeType}}

	case kindVideo, kindFile:
		if out.Content == "" {
			if kind == kindVideo {
				out.Content = n.prompts.Video
			} else {
				out.Content = n.prompts.File
			}
		}
		out.Files = []domain.FilePart{{
			MediaPart: domain.MediaPart{Data: data, MimeType: fileMimeType(meta)},
			Name:      meta.fileName,
		}}

	case kindVoice, kindAudio:
		if out.Content == "" {
			out.Content = n.prompts.Audio
		}
		out.Audios = []domain.MediaPart{{Data: data, MimeType: meta.mimeType}}
	}

	return out, nil
}

// fileMimeType resolves a generic file's mime type: the platform-declared
// type wins, then a filename-extension guess, then text/plain. Captionless
// files with no recognizable extension are almost always text snippets the
// model can read directly.
func fileMimeType(meta detected) string {
	mimeType := meta.mimeType
	if mimeType == "" && meta.fileName != "" {
		mimeType = mime.TypeByExtension(filepath.Ext(meta.fileName))
	}
	if mimeType == "" || mimeType == "application/octet-stream" {
		return "text/plain"
	}
	return mimeType
}
