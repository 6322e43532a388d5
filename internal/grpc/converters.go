package grpc

import (
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Belphemur/CaptionExport/internal/batch"
	"github.com/Belphemur/CaptionExport/internal/models"
	"github.com/Belphemur/CaptionExport/internal/services"
)

// Event types sent on a RunBatch stream.
const (
	EventItem = "item"
	EventFile = "file"
	EventDone = "done"
)

// Request accessors. A missing or mistyped field reads as its zero value.

func stringField(s *structpb.Struct, key string) string {
	if v, ok := s.GetFields()[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func boolField(s *structpb.Struct, key string, def bool) bool {
	v, ok := s.GetFields()[key]
	if !ok {
		return def
	}
	if _, isBool := v.GetKind().(*structpb.Value_BoolValue); !isBool {
		return def
	}
	return v.GetBoolValue()
}

// stringListField accepts a list of strings or a single string.
func stringListField(s *structpb.Struct, key string) []string {
	v, ok := s.GetFields()[key]
	if !ok {
		return nil
	}
	if str, isStr := v.GetKind().(*structpb.Value_StringValue); isStr {
		return []string{str.StringValue}
	}
	var out []string
	for _, item := range v.GetListValue().GetValues() {
		if str := item.GetStringValue(); str != "" {
			out = append(out, str)
		}
	}
	return out
}

func toAnyList[T any](values []T, convert func(T) any) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = convert(v)
	}
	return out
}

func convertVideoToMap(video models.Video) map[string]any {
	return map[string]any{
		"id":          video.ID,
		"title":       video.Title,
		"description": video.Description,
	}
}

func convertCaptionToMap(caption models.CaptionDescriptor) map[string]any {
	return map[string]any{
		"id":                caption.ID,
		"language":          caption.Language,
		"display_name":      caption.DisplayName,
		"is_auto_generated": caption.IsAutoGenerated,
	}
}

func convertCaptionListToStruct(video models.Video, captions []models.CaptionDescriptor) (*structpb.Struct, error) {
	defaultID := ""
	if def := models.DefaultCaption(captions); def != nil {
		defaultID = def.ID
	}
	return structpb.NewStruct(map[string]any{
		"video":              convertVideoToMap(video),
		"captions":           toAnyList(captions, func(c models.CaptionDescriptor) any { return convertCaptionToMap(c) }),
		"default_caption_id": defaultID,
	})
}

func convertExportedFileToStruct(file *services.ExportedFile) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"file_name":       file.FileName,
		"mime_type":       file.MimeType,
		"format":          file.Format.String(),
		"language":        file.Language,
		"content":         file.Content,
		"cues":            file.Cues,
		"skipped_entries": file.Skipped,
	})
}

func convertItemToMap(item models.DownloadItem) map[string]any {
	m := map[string]any{
		"id":         item.ID,
		"video_id":   item.VideoID,
		"caption_id": item.Caption.ID,
		"language":   item.Caption.Language,
		"formats":    toAnyList(item.Formats, func(f models.Format) any { return f.String() }),
		"file_names": toAnyList(item.FileNames, func(s string) any { return s }),
		"status":     item.Status.String(),
		"progress":   item.Progress,
	}
	if item.Error != "" {
		m["error"] = item.Error
	}
	return m
}

func convertItemEventToStruct(jobID string, item models.DownloadItem) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"type":   EventItem,
		"job_id": jobID,
		"item":   convertItemToMap(item),
	})
}

func convertFileEventToStruct(jobID, fileName, mimeType, content string) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"type":      EventFile,
		"job_id":    jobID,
		"file_name": fileName,
		"mime_type": mimeType,
		"content":   content,
	})
}

func convertDoneEventToStruct(snapshot batch.JobSnapshot) (*structpb.Struct, error) {
	counts := snapshot.Counts()
	return structpb.NewStruct(map[string]any{
		"type":      EventDone,
		"job_id":    snapshot.ID,
		"completed": counts[models.ItemStatusCompleted],
		"failed":    counts[models.ItemStatusError],
		"items":     toAnyList(snapshot.Items, func(i models.DownloadItem) any { return convertItemToMap(i) }),
	})
}
