package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
)

// LoadProducers reads the producer-code → display-name alias table from a
// two-column CSV file.
func LoadProducers(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open producers file: %w", err)
	}
	defer f.Close()

	return ReadProducers(f)
}

// ReadProducers parses producer aliases from CSV rows of (code, name).
func ReadProducers(r io.Reader) (map[string]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	producers := make(map[string]string)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read producers csv: %w", err)
		}
		if len(row) < 2 {
			return nil, fmt.Errorf("producers csv row has %d columns, want 2", len(row))
		}
		producers[row[0]] = row[1]
	}

	return producers, nil
}
