package notifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/progressr/internal/progress"
)

// RefFileName holds the id of the message the notifier keeps editing.
const RefFileName = "public_message_id.json"

// messageRef is the persisted reference. Older files store the id as a JSON number.
type messageRef struct {
	MessageID json.RawMessage `json:"message_id,omitempty"`
}

// LoadRef returns the stored message id, or "" when none is stored.
func LoadRef(dataDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dataDir, RefFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("reading message reference: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", nil
	}

	var ref messageRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return "", fmt.Errorf("parsing message reference: %w", err)
	}
	if len(ref.MessageID) == 0 || string(ref.MessageID) == "null" {
		return "", nil
	}

	var id string
	if err := json.Unmarshal(ref.MessageID, &id); err == nil {
		return id, nil
	}
	var num json.Number
	if err := json.Unmarshal(ref.MessageID, &num); err != nil {
		return "", fmt.Errorf("message id is neither string nor number: %s", ref.MessageID)
	}
	return num.String(), nil
}

// SaveRef persists the message id.
func SaveRef(dataDir, messageID string) error {
	return progress.WriteJSON(filepath.Join(dataDir, RefFileName), map[string]string{"message_id": messageID})
}
