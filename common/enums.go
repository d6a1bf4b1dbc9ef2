// Package common keeps enums shared by configuration and processing code, so
// neither has to import the other just for constants.
package common

// Requested output type.
// ENUM(epub2, epub3)
type OutputFmt int

func (o OutputFmt) Ext() string {
	switch o {
	case OutputFmtEpub2, OutputFmtEpub3:
		return ".epub"
	default:
		// this should never happen
		panic("unsupported format requested")
	}
}

// Document parsing method of the external pipeline.
// ENUM(auto, txt, ocr)
type ParseMethod int

// Backend used by the external pipeline.
// ENUM(pipeline, vlm-transformers, vlm-vllm-engine, vlm-http-client)
type Backend int

// IsVLM reports whether pipeline output lands in "vlm" directory rather than
// in directory named after parse method.
func (b Backend) IsVLM() bool {
	return b != BackendPipeline
}

// Where external pipeline loads its models from.
// ENUM(huggingface, modelscope, local)
type ModelSource int
