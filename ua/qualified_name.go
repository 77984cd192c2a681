// Copyright 2018-2019 opcua authors. All rights reserved.
// Use of this source code is governed by a MIT-style license that can be
// found in the LICENSE file.

package ua

// QualifiedName is a name qualified by a namespace index (Part 3, 8.3).
type QualifiedName struct {
	NamespaceIndex uint16
	Name           String
}

// Encode implements the binary QualifiedName encoding.
func (q *QualifiedName) Encode() ([]byte, error) {
	var b buffer
	b.writeUint16(q.NamespaceIndex)
	nb, err := q.Name.Encode()
	if err != nil {
		return nil, err
	}
	b.Write(nb)
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary QualifiedName decoding.
func (q *QualifiedName) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	ns, err := c.readUint16()
	if err != nil {
		return c.pos, err
	}
	var name String
	n, err := name.DecodeWithContext(buf[c.pos:], ctx)
	if err != nil {
		return c.pos, err
	}
	c.pos += n
	*q = QualifiedName{NamespaceIndex: ns, Name: name}
	return c.pos, nil
}

// LocalizedText is a string qualified by a locale, with an encoding mask
// that permits either field to be omitted independently (Part 3, 8.5).
type LocalizedText struct {
	Locale String
	Text   String
}

const (
	localizedTextLocaleFlag byte = 0x01
	localizedTextTextFlag   byte = 0x02
)

// Encode implements the binary LocalizedText encoding.
func (l *LocalizedText) Encode() ([]byte, error) {
	var b buffer
	var mask byte
	if !l.Locale.IsNull() {
		mask |= localizedTextLocaleFlag
	}
	if !l.Text.IsNull() {
		mask |= localizedTextTextFlag
	}
	b.writeUint8(mask)
	if mask&localizedTextLocaleFlag != 0 {
		lb, err := l.Locale.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(lb)
	}
	if mask&localizedTextTextFlag != 0 {
		tb, err := l.Text.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(tb)
	}
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary LocalizedText decoding.
func (l *LocalizedText) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	c := newCursor(buf, ctx)
	mask, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}
	var out LocalizedText
	if mask&localizedTextLocaleFlag != 0 {
		n, err := out.Locale.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += n
	}
	if mask&localizedTextTextFlag != 0 {
		n, err := out.Text.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += n
	}
	*l = out
	return c.pos, nil
}

// DiagnosticInfo carries additional diagnostic information about a service
// result (Part 4, 7.8). Fields the encoding mask marks absent take their
// zero value; InnerDiagnosticInfo is set only when HasInnerDiagnostics (the
// wire's InnerDiagnosticInfo flag) is true.
type DiagnosticInfo struct {
	SymbolicID          int32
	NamespaceURI        int32
	Locale              int32
	LocalizedText       int32
	AdditionalInfo      String
	InnerStatusCode     StatusCode
	HasInnerDiagnostics bool
	InnerDiagnosticInfo *DiagnosticInfo
}

// encoding-mask flags from OPC-UA Part 6, 5.2.2.12.
const (
	diagInfoSymbolicIDFlag      byte = 0x01
	diagInfoNamespaceURIFlag    byte = 0x02
	diagInfoLocalizedTextFlag   byte = 0x04
	diagInfoLocaleFlag          byte = 0x08
	diagInfoAdditionalInfoFlag  byte = 0x10
	diagInfoInnerStatusCodeFlag byte = 0x20
	diagInfoInnerDiagInfoFlag   byte = 0x40
)

// Encode implements the binary DiagnosticInfo encoding, writing only the
// fields the encoding mask marks present.
func (d *DiagnosticInfo) Encode() ([]byte, error) {
	var mask byte
	if d.SymbolicID != 0 {
		mask |= diagInfoSymbolicIDFlag
	}
	if d.NamespaceURI != 0 {
		mask |= diagInfoNamespaceURIFlag
	}
	if d.LocalizedText != 0 {
		mask |= diagInfoLocalizedTextFlag
	}
	if d.Locale != 0 {
		mask |= diagInfoLocaleFlag
	}
	if !d.AdditionalInfo.IsNull() {
		mask |= diagInfoAdditionalInfoFlag
	}
	if d.InnerStatusCode != StatusOK {
		mask |= diagInfoInnerStatusCodeFlag
	}
	if d.HasInnerDiagnostics && d.InnerDiagnosticInfo != nil {
		mask |= diagInfoInnerDiagInfoFlag
	}

	var b buffer
	b.writeUint8(mask)
	if mask&diagInfoSymbolicIDFlag != 0 {
		b.writeInt32(d.SymbolicID)
	}
	if mask&diagInfoNamespaceURIFlag != 0 {
		b.writeInt32(d.NamespaceURI)
	}
	if mask&diagInfoLocalizedTextFlag != 0 {
		b.writeInt32(d.LocalizedText)
	}
	if mask&diagInfoLocaleFlag != 0 {
		b.writeInt32(d.Locale)
	}
	if mask&diagInfoAdditionalInfoFlag != 0 {
		ab, err := d.AdditionalInfo.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(ab)
	}
	if mask&diagInfoInnerStatusCodeFlag != 0 {
		b.writeUint32(uint32(d.InnerStatusCode))
	}
	if mask&diagInfoInnerDiagInfoFlag != 0 {
		ib, err := d.InnerDiagnosticInfo.Encode()
		if err != nil {
			return nil, err
		}
		b.Write(ib)
	}
	return b.Bytes(), nil
}

// DecodeWithContext implements the binary DiagnosticInfo decoding.
func (d *DiagnosticInfo) DecodeWithContext(buf []byte, ctx *Context) (int, error) {
	if err := ctx.enterNested(); err != nil {
		return 0, err
	}
	defer ctx.exitNested()

	c := newCursor(buf, ctx)
	mask, err := c.readUint8()
	if err != nil {
		return c.pos, err
	}

	var out DiagnosticInfo
	if mask&diagInfoSymbolicIDFlag != 0 {
		if out.SymbolicID, err = c.readInt32(); err != nil {
			return c.pos, err
		}
	}
	if mask&diagInfoNamespaceURIFlag != 0 {
		if out.NamespaceURI, err = c.readInt32(); err != nil {
			return c.pos, err
		}
	}
	if mask&diagInfoLocalizedTextFlag != 0 {
		if out.LocalizedText, err = c.readInt32(); err != nil {
			return c.pos, err
		}
	}
	if mask&diagInfoLocaleFlag != 0 {
		if out.Locale, err = c.readInt32(); err != nil {
			return c.pos, err
		}
	}
	if mask&diagInfoAdditionalInfoFlag != 0 {
		n, err := out.AdditionalInfo.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += n
	}
	if mask&diagInfoInnerStatusCodeFlag != 0 {
		v, err := c.readUint32()
		if err != nil {
			return c.pos, err
		}
		out.InnerStatusCode = StatusCode(v)
	}
	if mask&diagInfoInnerDiagInfoFlag != 0 {
		var inner DiagnosticInfo
		n, err := inner.DecodeWithContext(buf[c.pos:], ctx)
		if err != nil {
			return c.pos, err
		}
		c.pos += n
		out.HasInnerDiagnostics = true
		out.InnerDiagnosticInfo = &inner
	}

	*d = out
	return c.pos, nil
}
