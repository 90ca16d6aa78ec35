package ines

import (
	"archive/zip"
	"bytes"
	"testing"
)

func makeHeader(prgBanks, chrBanks, flags6, flags7 byte) []byte {
	hdr := make([]byte, 16)
	copy(hdr, Magic)
	hdr[4] = prgBanks
	hdr[5] = chrBanks
	hdr[6] = flags6
	hdr[7] = flags7
	return hdr
}

func TestLoadINES1(t *testing.T) {
	buf := makeHeader(2, 1, 0x01, 0x00) // vertical mirroring, mapper 0
	buf = append(buf, make([]byte, 2*prgUnit)...)
	buf = append(buf, make([]byte, 1*chrUnit)...)

	rom, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if rom.NES20 {
		t.Fatal("expected iNES 1.0, got NES 2.0")
	}
	if rom.Mapper != 0 {
		t.Errorf("Mapper = %d, want 0", rom.Mapper)
	}
	if rom.Mirroring != Vertical {
		t.Errorf("Mirroring = %v, want vertical", rom.Mirroring)
	}
	if len(rom.PRG) != 2*prgUnit {
		t.Errorf("len(PRG) = %d, want %d", len(rom.PRG), 2*prgUnit)
	}
	if len(rom.CHR) != chrUnit {
		t.Errorf("len(CHR) = %d, want %d", len(rom.CHR), chrUnit)
	}
}

func TestLoadTruncated(t *testing.T) {
	buf := makeHeader(2, 0, 0, 0)
	buf = append(buf, make([]byte, prgUnit)...) // declared 2 banks, only 1 present

	_, err := Load(buf)
	if err == nil {
		t.Fatal("expected error for truncated PRG section")
	}
}

func TestBadMagic(t *testing.T) {
	buf := make([]byte, 16)
	_, err := Load(buf)
	if err != ErrBadHeader {
		t.Fatalf("err = %v, want ErrBadHeader", err)
	}
}

func TestNES20MapperHighBits(t *testing.T) {
	buf := makeHeader(1, 1, 0x40, 0x08) // flags7 bits 2-3 = 2 -> NES2.0
	buf[8] = 0x01                       // mapper bits 8-11 = 1, submapper 0
	buf = append(buf, make([]byte, prgUnit)...)
	buf = append(buf, make([]byte, chrUnit)...)

	rom, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !rom.NES20 {
		t.Fatal("expected NES 2.0 header")
	}
	if rom.Mapper != 0x104 {
		t.Errorf("Mapper = %#x, want 0x104", rom.Mapper)
	}
}

func TestOpenZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	rom := makeHeader(1, 1, 0, 0)
	rom = append(rom, make([]byte, prgUnit)...)
	rom = append(rom, make([]byte, chrUnit)...)

	fw, err := zw.Create("game.nes")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(rom); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	extracted, err := extractFromZip(buf.Bytes())
	if err != nil {
		t.Fatalf("extractFromZip: %v", err)
	}
	if !bytes.Equal(extracted, rom) {
		t.Fatal("extracted bytes don't match original rom")
	}
}
