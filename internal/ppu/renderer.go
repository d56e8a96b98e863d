package ppu

// clearScanline fills the current scanline with the lightest palette
// shade and marks every pixel transparent-to-sprites (Color0), used
// when BG&Window rendering is disabled on DMG.
func (p *PPU) clearScanline() {
	r, g, b := greyToRGB(0, 0)
	for x := 0; x < ScreenWidth; x++ {
		p.setRGB(x, r, g, b)
		p.bgprio[x] = priorityColor0
	}
}

// greyToRGB maps a 2-bit shade (extracted from palette byte v at slot
// i) to the four-tone green-grey palette of the monochrome console.
func greyToRGB(v, i uint8) (r, g, b uint8) {
	switch (v >> (2 * i)) & 0x03 {
	case 0x00:
		return 175, 203, 70
	case 0x01:
		return 121, 170, 109
	case 0x02:
		return 34, 111, 95
	default:
		return 8, 41, 85
	}
}

// setRGB writes one opaque RGBA pixel at (x, p.ly) into the framebuffer.
func (p *PPU) setRGB(x int, r, g, b uint8) {
	const bytesPerPixel = 4
	offset := int(p.ly)*ScreenWidth*bytesPerPixel + x*bytesPerPixel
	p.framebuffer[offset+0] = r
	p.framebuffer[offset+1] = g
	p.framebuffer[offset+2] = b
	p.framebuffer[offset+3] = 0xFF
}

// readBank0/readBank1 read VRAM directly by absolute 0x8000-based
// address, regardless of the FF4F bank select — used by the renderer,
// which must read tile attributes (always bank 1) and tile pixel data
// (bank chosen per-tile by the attribute byte) independently of
// whatever the CPU currently has banked in for its own accesses.
func (p *PPU) readBank0(addr uint16) uint8 { return p.vram[0][addr-0x8000] }
func (p *PPU) readBank1(addr uint16) uint8 { return p.vram[1][addr-0x8000] }

// renderBackground renders the background and window layers for the
// current scanline in a single pass, following the tile map the
// console would actually sample pixel-by-pixel: each screen column
// independently decides whether it falls inside the window.
func (p *PPU) renderBackground() {
	tileDataBase := uint16(0x8800)
	if p.lcdc&LCDCBGTileData != 0 {
		tileDataBase = 0x8000
	}

	wx := p.wx - 7 //nolint:gosec // intentional wraparound, matches hardware
	inWindowY := p.lcdc&LCDCWindowEnable != 0 && p.wy <= p.ly

	py := p.scy + p.ly
	if inWindowY {
		py = p.ly - p.wy
	}

	for x := 0; x < ScreenWidth; x++ {
		ux := uint8(x) //nolint:gosec // x < ScreenWidth(160)
		inWindowX := ux >= wx

		px := p.scx + ux
		if inWindowY && inWindowX {
			px = ux - wx
		}

		tileMapBase := uint16(0x9800)
		switch {
		case inWindowY && inWindowX:
			if p.lcdc&LCDCWindowTileMap != 0 {
				tileMapBase = 0x9C00
			}
		case p.lcdc&LCDCBGTileMap != 0:
			tileMapBase = 0x9C00
		}

		tileRow := uint16(py>>3) & 31
		tileCol := uint16(px>>3) & 31
		tileAddr := tileMapBase + tileRow*32 + tileCol

		tileIndex := p.readBank0(tileAddr)
		attrs := uint8(0)
		if p.mode == ModeCGB {
			attrs = p.readBank1(tileAddr)
		}

		var tileOffset int32
		if p.lcdc&LCDCBGTileData != 0 {
			tileOffset = int32(tileIndex)
		} else {
			tileOffset = int32(int8(tileIndex)) + 128 //nolint:gosec // signed tile index
		}
		tileData := tileDataBase + uint16(tileOffset)*16

		tileY := py % 8
		if attrs&AttrYFlip != 0 {
			tileY = 7 - tileY
		}
		tileX := px % 8
		if attrs&AttrXFlip != 0 {
			tileX = 7 - tileX
		}

		lineAddr := tileData + uint16(tileY)*2
		var lo, hi uint8
		if p.mode == ModeCGB && attrs&AttrBank != 0 {
			lo, hi = p.readBank1(lineAddr), p.readBank1(lineAddr+1)
		} else {
			lo, hi = p.readBank0(lineAddr), p.readBank0(lineAddr+1)
		}

		bit := uint8(0x80) >> tileX
		color := uint8(0)
		if lo&bit != 0 {
			color |= 1
		}
		if hi&bit != 0 {
			color |= 2
		}

		switch {
		case color == 0:
			p.bgprio[x] = priorityColor0
		case attrs&AttrPriority != 0:
			p.bgprio[x] = priorityHigh
		default:
			p.bgprio[x] = priorityNormal
		}

		if p.mode == ModeCGB {
			// CGB background palette (FF68/FF69 color RAM) is not
			// modeled; see DESIGN.md for the scope decision.
			p.setRGB(x, 0, 0, 0)
		} else {
			r, g, b := greyToRGB(p.bgp, color)
			p.setRGB(x, r, g, b)
		}
	}
}

// scanOAM collects up to ten sprites intersecting the current
// scanline, in OAM order, mirroring the hardware's per-line sprite limit.
func (p *PPU) scanOAM() {
	height := int16(8)
	if p.lcdc&LCDCOBJSize != 0 {
		height = 16
	}

	p.sprites = p.sprites[:0]
	ly := int16(p.ly)
	for i := 0; i < 40; i++ {
		addr := i * 4
		y := int16(p.oam[addr]) - 16
		if ly < y || ly >= y+height {
			continue
		}
		p.sprites = append(p.sprites, sprite{
			y:         y,
			x:         int16(p.oam[addr+1]) - 8,
			tileIndex: p.oam[addr+2],
			attrs:     p.oam[addr+3],
		})
		if len(p.sprites) >= 10 {
			break
		}
	}
}

// renderSprites draws the sprites buffered by scanOAM over the
// background already written for this scanline, applying the
// priority rules spec.md distinguishes for the two consoles. Sprites
// are drawn in OAM order so a later entry overdraws an earlier one at
// the same pixel, per spec.md's overdraw rule.
func (p *PPU) renderSprites() {
	height := int16(8)
	if p.lcdc&LCDCOBJSize != 0 {
		height = 16
	}

	for i := 0; i < len(p.sprites); i++ {
		spr := p.sprites[i]

		line := int16(p.ly) - spr.y
		if spr.attrs&AttrYFlip != 0 {
			line = height - 1 - line
		}

		tileIndex := uint16(spr.tileIndex)
		if height == 16 {
			tileIndex &^= 1
			if line >= 8 {
				tileIndex++
				line -= 8
			}
		}
		tileAddr := 0x8000 + tileIndex*16 + uint16(line)*2

		var lo, hi uint8
		if p.mode == ModeCGB && spr.attrs&AttrBank != 0 {
			lo, hi = p.readBank1(tileAddr), p.readBank1(tileAddr+1)
		} else {
			lo, hi = p.readBank0(tileAddr), p.readBank0(tileAddr+1)
		}

		for x := int16(0); x < 8; x++ {
			pixelX := spr.x + x
			if pixelX < 0 || pixelX >= ScreenWidth {
				continue
			}

			tileX := x
			if spr.attrs&AttrXFlip != 0 {
				tileX = 7 - x
			}
			bit := uint8(0x80) >> uint(tileX)
			color := uint8(0)
			if lo&bit != 0 {
				color |= 1
			}
			if hi&bit != 0 {
				color |= 2
			}
			if color == 0 {
				continue
			}

			prio := p.bgprio[pixelX]
			var skip bool
			switch {
			case p.mode == ModeCGB && p.lcdc&LCDCBGWindowEnable == 0:
				skip = prio == priorityHigh
			case prio == priorityHigh:
				skip = prio != priorityColor0
			default:
				skip = spr.attrs&AttrPriority != 0 && prio != priorityColor0
			}
			if skip {
				continue
			}

			if p.mode == ModeCGB {
				// CGB object palette (FF6A/FF6B color RAM) is not
				// modeled; see DESIGN.md for the scope decision.
				continue
			}
			palette := p.obp0
			if spr.attrs&AttrPaletteNo != 0 {
				palette = p.obp1
			}
			r, g, b := greyToRGB(palette, color)
			p.setRGB(int(pixelX), r, g, b)
		}
	}
}
