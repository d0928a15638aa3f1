package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/scontrini/scontrini/internal/entity"
)

var (
	compileOnce    sync.Once
	receiptSchema  *jsonschema.Schema
	compileFailure error
)

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		b, err := json.Marshal(BuildReceiptJSONSchema())
		if err != nil {
			compileFailure = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("receipt.json", bytes.NewReader(b)); err != nil {
			compileFailure = fmt.Errorf("add schema: %w", err)
			return
		}
		receiptSchema, compileFailure = compiler.Compile("receipt.json")
	})
	return receiptSchema, compileFailure
}

// ValidateJSON validates a serialized receipt document against the contract.
func ValidateJSON(data []byte) error {
	schema, err := compiled()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("receipt does not match contract: %w", err)
	}
	return nil
}

// ValidateReceipt serializes the record and validates it against the contract.
func ValidateReceipt(r *entity.Receipt) error {
	b, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	return ValidateJSON(b)
}
