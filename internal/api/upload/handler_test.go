package upload

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleUploadRejectsMissingFile(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/upload", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHandleUploadRejectsNonPDF(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "image.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("png"))
	require.NoError(t, w.Close())
	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSpoolHashesContent(t *testing.T) {
	tmp, sha, err := spool(bytes.NewReader([]byte("%PDF-1.4 data")))
	require.NoError(t, err)
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	sum := sha256.Sum256([]byte("%PDF-1.4 data"))
	assert.Equal(t, hex.EncodeToString(sum[:]), sha)

	buf := make([]byte, 4)
	_, err = tmp.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(buf))
}

func TestStoreToLocal(t *testing.T) {
	t.Chdir(t.TempDir())
	got, err := storeToLocal(bytes.NewReader([]byte("pdf bytes")), "abc.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("storage", "documents", "abc.pdf"), got)

	data, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(data))

	entries, err := os.ReadDir(filepath.Join("storage", "documents"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStoredName(t *testing.T) {
	assert.Equal(t, "ff.pdf", storedName("ff", &multipart.FileHeader{Filename: "Report.PDF"}))
	assert.Equal(t, "ff.pdf", storedName("ff", &multipart.FileHeader{Filename: "noext"}))
}
