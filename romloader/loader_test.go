package romloader

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// createTestROMFile creates a temporary .ch8 file with test data
func createTestROMFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// createTestZipFile creates a temporary .zip file containing a single entry
func createTestZipFile(t *testing.T, romData []byte, romName string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")

	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	fw, err := w.Create(romName)
	assert.NoError(t, err)
	_, err = fw.Write(romData)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	return path
}

// createTestGzipFile creates a temporary .ch8.gz file containing ROM data
func createTestGzipFile(t *testing.T, romData []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ch8.gz")

	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	w := gzip.NewWriter(f)
	_, err = w.Write(romData)
	assert.NoError(t, err)
	assert.NoError(t, w.Close())
	return path
}

// createTestTarGzFile creates a temporary .tar.gz file with the given entries
func createTestTarGzFile(t *testing.T, entries map[string][]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tar.gz")

	f, err := os.Create(path)
	assert.NoError(t, err)
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, data := range entries {
		assert.NoError(t, tw.WriteHeader(&tar.Header{
			Name: name,
			Mode: 0644,
			Size: int64(len(data)),
		}))
		_, err = tw.Write(data)
		assert.NoError(t, err)
	}
	assert.NoError(t, tw.Close())
	assert.NoError(t, gw.Close())
	return path
}

func TestLoader_RawLoad(t *testing.T) {
	testData := []byte{0x60, 0x01, 0x12, 0x00}
	path := createTestROMFile(t, testData)

	data, name, err := LoadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, testData, data)
	assert.Equal(t, "test.ch8", name)
}

func TestLoader_ZipLoad(t *testing.T) {
	testData := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	path := createTestZipFile(t, testData, "game.ch8")

	data, name, err := LoadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, testData, data)
	assert.Equal(t, "game.ch8", name)
}

func TestLoader_GzipLoad(t *testing.T) {
	testData := []byte{0x11, 0x22, 0x33, 0x44, 0x55}
	path := createTestGzipFile(t, testData)

	data, name, err := LoadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, testData, data)
	assert.Equal(t, "test.ch8", name)
}

func TestLoader_TarGzLoad(t *testing.T) {
	testData := []byte{0x12, 0x34, 0x56}
	path := createTestTarGzFile(t, map[string][]byte{
		"readme.txt": []byte("hello"),
		"game.ch8":   testData,
	})

	data, name, err := LoadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, testData, data)
	assert.Equal(t, "game.ch8", name)
}

// TestLoader_FormatDetectionMagic tests detection via magic bytes
func TestLoader_FormatDetectionMagic(t *testing.T) {
	testCases := []struct {
		header   []byte
		path     string
		expected formatType
	}{
		{[]byte{0x50, 0x4B, 0x03, 0x04}, "file.dat", formatZIP},
		{[]byte{0x50, 0x4B, 0x05, 0x06}, "file.dat", formatZIP},
		{[]byte{0x37, 0x7A, 0xBC, 0xAF, 0x27, 0x1C}, "file.dat", format7z},
		{[]byte{0x1F, 0x8B}, "file.dat", formatGzip},
		{[]byte{0x52, 0x61, 0x72, 0x21}, "file.dat", formatRAR},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, detectFormat(tc.header, tc.path))
	}
}

// TestLoader_FormatDetectionExtension tests fallback to extension
func TestLoader_FormatDetectionExtension(t *testing.T) {
	testCases := []struct {
		path     string
		expected formatType
	}{
		{"game.ch8", formatRaw},
		{"game.CH8", formatRaw},
		{"game.c8", formatRaw},
		{"game.rom", formatRaw},
		{"game.zip", formatZIP},
		{"game.ZIP", formatZIP},
		{"game.7z", format7z},
		{"game.gz", formatGzip},
		{"game.tgz", formatGzip},
		{"game.tar.gz", formatGzip},
		{"game.rar", formatRAR},
		{"game.unknown", formatUnknown},
	}

	for _, tc := range testCases {
		// Empty header forces extension-based detection
		assert.Equal(t, tc.expected, detectFormat([]byte{}, tc.path), tc.path)
	}
}

func TestLoader_NoROMInArchive(t *testing.T) {
	path := createTestZipFile(t, []byte("hello"), "readme.txt")

	_, _, err := LoadROM(path)
	assert.Error(t, err)
	assert.Equal(t, ErrNoROMFile, err)
}

func TestLoader_FileTooLarge(t *testing.T) {
	largeData := make([]byte, maxROMSize+1)
	path := createTestGzipFile(t, largeData)

	_, _, err := LoadROM(path)
	assert.Error(t, err)
}

func TestLoader_FileNotFound(t *testing.T) {
	_, _, err := LoadROM("/nonexistent/path/game.ch8")
	assert.Error(t, err)
}

func TestLoader_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.wav")
	assert.NoError(t, os.WriteFile(path, []byte{0x00, 0x01}, 0644))

	_, _, err := LoadROM(path)
	assert.Error(t, err)
}

// TestLoader_IsROMFile tests the ROM file extension check
func TestLoader_IsROMFile(t *testing.T) {
	testCases := []struct {
		name     string
		expected bool
	}{
		{"game.ch8", true},
		{"game.CH8", true},
		{"game.c8", true},
		{"game.rom", true},
		{"game.txt", false},
		{"game.ch8.bak", false},
		{"game", false},
		{"ch8", false},
		{".ch8", true},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, isROMFile(tc.name), tc.name)
	}
}

// TestLoader_ZipWithSubdirectory tests extracting a ROM from a nested directory
func TestLoader_ZipWithSubdirectory(t *testing.T) {
	testData := []byte{0x12, 0x34, 0x56}
	path := createTestZipFile(t, testData, "roms/games/test.ch8")

	data, name, err := LoadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, testData, data)
	assert.Equal(t, "test.ch8", name)
}

func TestLoader_EmptyFile(t *testing.T) {
	path := createTestROMFile(t, []byte{})

	data, _, err := LoadROM(path)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(data))
}
