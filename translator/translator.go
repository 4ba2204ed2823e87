package translator

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	gst "github.com/richinsley/goshadertranslator"
)

var (
	once       sync.Once
	translator *gst.ShaderTranslator
	initErr    error
)

// GetTranslator returns the process wide shader translator, creating it on first use.
func GetTranslator() (*gst.ShaderTranslator, error) {
	once.Do(func() {
		translator, initErr = gst.NewShaderTranslator(context.Background())
		if initErr != nil {
			initErr = errors.Wrap(initErr, "failed to create shader translator")
		}
	})
	return translator, initErr
}

// Translated is a fragment or vertex stage ready for the driver, with the
// driver side names of its uniforms.
type Translated struct {
	Code     string
	Uniforms map[string]string
}

// Translate converts WebGL2 GLSL into GLSL 4.10, or ESSL when gles is set.
func Translate(source, stage string, gles bool) (*Translated, error) {
	t, err := GetTranslator()
	if err != nil {
		return nil, err
	}
	outputFormat := gst.OutputFormatGLSL410
	if gles {
		outputFormat = gst.OutputFormatESSL
	}
	out, err := t.TranslateShader(source, stage, gst.ShaderSpecWebGL2, outputFormat)
	if err != nil {
		return nil, errors.Wrapf(err, "%s shader translation failed", stage)
	}
	uniforms := make(map[string]string, len(out.Variables))
	for name, v := range out.Variables {
		uniforms[name] = v.MappedName
	}
	return &Translated{Code: out.Code, Uniforms: uniforms}, nil
}
