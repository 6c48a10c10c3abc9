package pronounce

import (
	"context"
	"fmt"

	"github.com/Halleck45/OpenPronounce/pkg/pronounce/audio"
)

// ffmpegConverter probes with ffprobe and converts with ffmpeg.
type ffmpegConverter struct {
	log Logger
}

func (c ffmpegConverter) Convert(ctx context.Context, inputPath, outDir string, sampleRate int) (string, *audio.Metadata, error) {
	meta, err := audio.ReadMetadataFFmpeg(ctx, inputPath)
	if err != nil {
		// conversion may still succeed, e.g. for streams ffprobe cannot size
		c.log.Warnf("probe %s: %v", inputPath, err)
		meta = nil
	}

	wavPath, err := audio.ConvertToMonoWAV(ctx, inputPath, outDir, audio.ConvertWAVConfig{
		SampleRate: sampleRate,
	})
	if err != nil {
		return "", nil, fmt.Errorf("audio conversion failed: %w", err)
	}
	return wavPath, meta, nil
}
