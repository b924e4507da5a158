package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/photo-effects-mcp/internal/framing"
	pximg "github.com/ironsheep/photo-effects-mcp/internal/imaging"
)

// ExportFileName is the suggested name for exported files.
const ExportFileName = "filter-result.png"

// Export is an encoded full-resolution render.
type Export struct {
	Data     []byte
	FileName string
	Width    int
	Height   int
}

// Export renders req at the fixed export resolution, ignoring req.Output,
// and encodes the result as PNG. It always renders onto its own surface.
func (p *Pipeline) Export(ctx context.Context, src image.Image, req Request) (*Export, error) {
	req.Output = framing.Export()
	res, err := p.Render(ctx, src, req)
	if err != nil {
		return nil, err
	}

	data, err := pximg.EncodePNG(res.Image)
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	b := res.Image.Bounds()
	return &Export{
		Data:     data,
		FileName: ExportFileName,
		Width:    b.Dx(),
		Height:   b.Dy(),
	}, nil
}
