package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/MILA-Wien/odoo-product-updater-bot/internal/config"
	"github.com/MILA-Wien/odoo-product-updater-bot/internal/domain/models"
)

// FetchTerra downloads the configured BNN price lists over anonymous FTP and
// merges them into one barcode-keyed map. Later files override earlier ones
// for the same barcode. Any retrieval or parse failure aborts.
func FetchTerra(cfg config.TerraConfig, logger *zap.Logger) (map[string]models.SupplierRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	addr := cfg.FTPHost
	if !strings.Contains(addr, ":") {
		addr += ":21"
	}

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("dial terra ftp %s: %w", addr, err)
	}
	defer func() { _ = conn.Quit() }()

	if err := conn.Login("anonymous", "anonymous"); err != nil {
		return nil, fmt.Errorf("login terra ftp: %w", err)
	}

	merged := make(map[string]models.SupplierRecord)
	for _, name := range cfg.Files {
		resp, err := conn.Retr(name)
		if err != nil {
			return nil, fmt.Errorf("retrieve %s: %w", name, err)
		}

		records, err := ParseBNN(resp, sourceTag(name))
		closeErr := resp.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close %s: %w", name, closeErr)
		}

		logger.Info("terra price list loaded", zap.String("file", name), zap.Int("articles", len(records)))
		mergeRecords(merged, records)
	}

	return merged, nil
}

// LoadAgidra reads the configured local catalog files and merges them into
// one barcode-keyed map, later files overriding earlier ones.
func LoadAgidra(cfg config.AgidraConfig, logger *zap.Logger) (map[string]models.SupplierRecord, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	merged := make(map[string]models.SupplierRecord)
	for _, path := range cfg.Files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open agidra catalog: %w", err)
		}

		records, err := ParseAgidraCSV(f)
		closeErr := f.Close()
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("close %s: %w", path, closeErr)
		}

		logger.Info("agidra catalog loaded", zap.String("file", path), zap.Int("articles", len(records)))
		mergeRecords(merged, records)
	}

	return merged, nil
}

// sourceTag derives the feed tag from a price list file name
// (PL_FOOD.bnn → food).
func sourceTag(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.TrimPrefix(base, "PL_")
	return strings.ToLower(base)
}

func mergeRecords(dst, src map[string]models.SupplierRecord) {
	for barcode, rec := range src {
		dst[barcode] = rec
	}
}
