package platform

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lowaak/interval-trainer/internal/cues"
)

// Sound modes accepted by NewTonePlayer.
const (
	SoundAuto = "auto"
	SoundPCM  = "pcm"
	SoundBell = "bell"
	SoundOff  = "off"
)

// rawPlayers are tried in order; each reads mono s16le PCM from stdin.
var rawPlayers = []struct {
	name string
	args []string
}{
	{"paplay", []string{"--raw", "--format=s16le", "--rate=" + strconv.Itoa(cues.SampleRate), "--channels=1"}},
	{"aplay", []string{"-q", "-t", "raw", "-f", "S16_LE", "-r", strconv.Itoa(cues.SampleRate), "-c", "1", "-"}},
	{"pw-play", []string{"--format=s16", "--rate=" + strconv.Itoa(cues.SampleRate), "--channels=1", "-"}},
}

// CommandTonePlayer synthesizes tones and pipes them to a raw PCM player.
type CommandTonePlayer struct {
	path string
	args []string
}

// NewCommandTonePlayer finds the first raw PCM player on PATH.
func NewCommandTonePlayer() (*CommandTonePlayer, error) {
	for _, candidate := range rawPlayers {
		if path, err := exec.LookPath(candidate.name); err == nil {
			return &CommandTonePlayer{path: path, args: candidate.args}, nil
		}
	}
	return nil, fmt.Errorf("no raw audio player found: %w", ErrUnsupported)
}

func (p *CommandTonePlayer) Play(ctx context.Context, tone cues.Tone) error {
	pcm := tone.PCM(cues.SampleRate, cues.ToneGain)
	if len(pcm) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, p.path, p.args...)
	cmd.Stdin = bytes.NewReader(pcm)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", filepath.Base(p.path), err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (p *CommandTonePlayer) String() string {
	return filepath.Base(p.path)
}

// Beeper rings the terminal bell. tcell.Screen satisfies it.
type Beeper interface {
	Beep() error
}

// BellTonePlayer rings the terminal bell for every tone. Frequency and
// waveform are lost; timing is kept by the emitter.
type BellTonePlayer struct {
	beeper Beeper
}

func NewBellTonePlayer(beeper Beeper) *BellTonePlayer {
	if beeper == nil {
		panic("BellTonePlayer: beeper cannot be nil")
	}
	return &BellTonePlayer{beeper: beeper}
}

func (p *BellTonePlayer) Play(ctx context.Context, tone cues.Tone) error {
	return p.beeper.Beep()
}

func (p *BellTonePlayer) String() string {
	return "terminal bell"
}

// NewTonePlayer picks the tone channel for mode. It returns nil for SoundOff
// or when nothing can play, in which case the tone channel is skipped.
func NewTonePlayer(mode string, beeper Beeper) (cues.TonePlayer, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case SoundOff:
		return nil, nil
	case SoundBell:
		if beeper == nil {
			return nil, fmt.Errorf("terminal bell: %w", ErrUnsupported)
		}
		return NewBellTonePlayer(beeper), nil
	case SoundPCM:
		player, err := NewCommandTonePlayer()
		if err != nil {
			return nil, err
		}
		return player, nil
	case SoundAuto, "":
		if player, err := NewCommandTonePlayer(); err == nil {
			return player, nil
		}
		if beeper != nil {
			return NewBellTonePlayer(beeper), nil
		}
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sound mode %q", mode)
	}
}
