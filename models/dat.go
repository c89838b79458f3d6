// Package models holds the wire-format structs bound to the Logiqx XML
// dialect (§6), adapted from the teacher's flat DATGame/DATROM pair into a
// document capable of carrying a full header and a clone-aware game list.
package models

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"romnibus/internal/datmodel"
)

// DATDocument is the root <datafile> element.
type DATDocument struct {
	XMLName xml.Name    `xml:"datafile"`
	Header  DATHeader   `xml:"header"`
	Games   []DATGame   `xml:"game"`
}

// DATHeader is the <header> element.
type DATHeader struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
	Date        string `xml:"date"`
	URL         string `xml:"url,omitempty"`
	Comment     string `xml:"comment,omitempty"`
}

// DATGame is a <game> element. Bios and DeviceRefs carry the MAME-dialect
// extensions Logiqx DATs use for arcade-style catalogs: `romof` names the
// BIOS set this game depends on, and a <device_ref> child is emitted per
// referenced device game.
type DATGame struct {
	Name       string      `xml:"name,attr"`
	Parent     string      `xml:"cloneof,attr,omitempty"`
	Bios       string      `xml:"romof,attr,omitempty"`
	DeviceRefs []DeviceRef `xml:"device_ref"`
	ROMs       []DATROM    `xml:"rom"`
}

// DeviceRef is a <device_ref> child element naming another game whose ROMs
// this machine-kind game requires.
type DeviceRef struct {
	Name string `xml:"name,attr"`
}

// DATROM is a <rom> element within a game. Bios marks a ROM that belongs to
// its game's own BIOS set — the set a dependent game's romof subtracts.
type DATROM struct {
	Name   string `xml:"name,attr"`
	Size   string `xml:"size,attr"`
	CRC    string `xml:"crc,attr,omitempty"`
	MD5    string `xml:"md5,attr,omitempty"`
	SHA1   string `xml:"sha1,attr,omitempty"`
	SHA256 string `xml:"sha256,attr,omitempty"`
	Merge  string `xml:"merge,attr,omitempty"`
	Bios   string `xml:"bios,attr,omitempty"`
}

// FromDAT converts the core's datmodel.DAT into the Logiqx wire format.
// ROM fingerprints are carried in the SHA1 field, matching the core's
// choice of SHA-1 as its fingerprint function (internal/fingerprint).
func FromDAT(d datmodel.DAT) DATDocument {
	doc := DATDocument{
		Header: DATHeader{
			Name:        d.Header.Name,
			Description: d.Header.Description,
			Version:     d.Header.Version,
			Date:        d.Header.Date,
			URL:         d.Header.URL,
			Comment:     d.Header.Comment,
		},
	}

	for _, g := range d.Games {
		dg := DATGame{Name: g.Name, Parent: g.Parent, Bios: g.BIOS}
		for _, ref := range g.DeviceRefs {
			dg.DeviceRefs = append(dg.DeviceRefs, DeviceRef{Name: ref})
		}
		for _, r := range g.ROMs {
			dr := DATROM{
				Name:  r.Name,
				Size:  strconv.FormatInt(r.Size, 10),
				SHA1:  r.Fingerprint,
				Merge: r.Merge,
			}
			if r.IsBIOS {
				dr.Bios = "yes"
			}
			dg.ROMs = append(dg.ROMs, dr)
		}
		doc.Games = append(doc.Games, dg)
	}

	return doc
}

// ToDAT converts a parsed Logiqx document into the core's datmodel.DAT.
func ToDAT(doc DATDocument) (datmodel.DAT, error) {
	d := datmodel.DAT{
		Header: datmodel.Header{
			Name:        doc.Header.Name,
			Description: doc.Header.Description,
			Version:     doc.Header.Version,
			Date:        doc.Header.Date,
			URL:         doc.Header.URL,
			Comment:     doc.Header.Comment,
		},
	}

	for _, dg := range doc.Games {
		g := datmodel.Game{Name: dg.Name, Parent: dg.Parent, BIOS: dg.Bios}
		for _, ref := range dg.DeviceRefs {
			g.DeviceRefs = append(g.DeviceRefs, ref.Name)
		}
		for _, dr := range dg.ROMs {
			size, err := strconv.ParseInt(dr.Size, 10, 64)
			if err != nil {
				return datmodel.DAT{}, fmt.Errorf("models: parsing rom size %q for %s/%s: %w", dr.Size, dg.Name, dr.Name, err)
			}
			g.ROMs = append(g.ROMs, datmodel.ROM{
				Name:        dr.Name,
				Size:        size,
				Fingerprint: dr.SHA1,
				Merge:       dr.Merge,
				IsBIOS:      dr.Bios != "",
			})
		}
		d.Games = append(d.Games, g)
	}

	return d, nil
}

// MarshalXML renders the document with the standard XML declaration and
// Logiqx's conventional indentation.
func (doc DATDocument) MarshalXML() ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "\t")
	if err != nil {
		return nil, fmt.Errorf("models: marshaling datfile: %w", err)
	}
	header := []byte(xml.Header)
	return append(header, append(body, '\n')...), nil
}

// ParseDAT unmarshals a Logiqx XML document into datmodel.DAT.
func ParseDAT(data []byte) (datmodel.DAT, error) {
	var doc DATDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return datmodel.DAT{}, fmt.Errorf("models: parsing datfile: %w", err)
	}
	return ToDAT(doc)
}
