package infrastructure

import "github.com/DRSN-tech/storefront-backend/pkg/e"

// GetExtensionFromMIME возвращает расширение файла квитанции по MIME-типу.
// Поддерживает json, pdf, txt. Возвращает ошибку e.ErrUnsupportedMediaType для неподдерживаемых типов.
func GetExtensionFromMIME(mime string) (string, error) {
	switch mime {
	case "application/json":
		return "json", nil
	case "application/pdf":
		return "pdf", nil
	case "text/plain", "text/plain; charset=utf-8":
		return "txt", nil
	default:
		return "bin", e.ErrUnsupportedMediaType
	}
}
