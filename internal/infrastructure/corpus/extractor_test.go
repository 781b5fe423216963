package corpus

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/uinjkt-dev/campus-assistant/internal/core/domain"
)

func TestExtractCSVBuildsDocumentsWithMetadata(t *testing.T) {
	sheet := strings.Join([]string{
		"Jurusan Program Studi,Jenjang,Kelompok,Tarif WNI",
		"Agribisnis,S1,3,3500000",
		"Manajemen,S2,2,5000000",
	}, "\n")

	docs, err := NewExtractor().Extract(context.Background(), "ukt.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}

	first := docs[0]
	want := "Prodi: Agribisnis | Jenjang: S1 | KELOMPOK: 3 | TARIF_WNI: 3500000"
	if first.Content != want {
		t.Fatalf("content = %q, want %q", first.Content, want)
	}
	if first.Metadata[domain.MetaSource] != "ukt.csv" {
		t.Fatalf("SOURCE = %q", first.Metadata[domain.MetaSource])
	}
	if first.Metadata[domain.MetaProdi] != "Agribisnis" {
		t.Fatalf("prodi = %q", first.Metadata[domain.MetaProdi])
	}
	if docs[1].Metadata[domain.MetaJenjang] != "S2" {
		t.Fatalf("jenjang = %q, want S2", docs[1].Metadata[domain.MetaJenjang])
	}
}

func TestExtractAppliesMetadataDefaults(t *testing.T) {
	sheet := "Nama,Keterangan\nPerpustakaan,Buka 08-20"

	docs, err := NewExtractor().Extract(context.Background(), "fasilitas.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	meta := docs[0].Metadata
	if meta[domain.MetaProdi] != "UMUM" || meta[domain.MetaJenjang] != "S1" {
		t.Fatalf("defaults = %v", meta)
	}
	if meta[domain.MetaKategori] != domain.KategoriKeuangan || meta[domain.MetaTipeData] != "BIAYA" {
		t.Fatalf("category defaults = %v", meta)
	}
}

func TestExtractTextColumnOverridesRendering(t *testing.T) {
	sheet := "Text,Kategori\nProfil singkat kampus,AKADEMIK"

	docs, err := NewExtractor().Extract(context.Background(), "profil.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if docs[0].Content != "Profil singkat kampus" {
		t.Fatalf("content = %q, want TEXT column verbatim", docs[0].Content)
	}
	if docs[0].Metadata[domain.MetaKategori] != domain.KategoriAkademik {
		t.Fatalf("kategori = %q", docs[0].Metadata[domain.MetaKategori])
	}
}

func TestExtractSkipsEmptyRows(t *testing.T) {
	sheet := "Nama,Tarif\nAgribisnis,3500000\n,\n"

	docs, err := NewExtractor().Extract(context.Background(), "ukt.csv", strings.NewReader(sheet))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected empty row skipped, got %d documents", len(docs))
	}
}

func TestExtractHeaderOnlySheetYieldsNoDocuments(t *testing.T) {
	docs, err := NewExtractor().Extract(context.Background(), "ukt.csv", strings.NewReader("Nama,Tarif"))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("expected no documents, got %d", len(docs))
	}
}

func TestExtractXLSX(t *testing.T) {
	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(0)
	rows := [][]string{
		{"Jurusan Program Studi", "Jenjang", "Tarif WNI"},
		{"Teknik Informatika", "S1", "3500000"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}

	docs, err := NewExtractor().Extract(context.Background(), "ukt.xlsx", &buf)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if docs[0].Metadata[domain.MetaProdi] != "Teknik Informatika" {
		t.Fatalf("prodi = %q", docs[0].Metadata[domain.MetaProdi])
	}
}

func TestExtractRejectsUnknownExtension(t *testing.T) {
	_, err := NewExtractor().Extract(context.Background(), "notes.pdf", strings.NewReader("x"))
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
