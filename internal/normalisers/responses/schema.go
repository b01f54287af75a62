package responses

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const underwriteSchemaURL = "https://caseflow.schemas.local/underwrite.schema.json"

//go:embed underwrite.schema.json
var underwriteSchema string

func compileUnderwriteSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(underwriteSchemaURL, strings.NewReader(underwriteSchema)); err != nil {
		return nil, fmt.Errorf("load underwrite schema: %w", err)
	}
	schema, err := c.Compile(underwriteSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile underwrite schema: %w", err)
	}
	return schema, nil
}
