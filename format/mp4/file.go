package mp4

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"

	"github.com/ugparu/mp4edts/utils"
	"github.com/ugparu/mp4edts/utils/logger"
)

type filePatch struct {
	input, output string
}

func (p *filePatch) String() string {
	return fmt.Sprintf("EDTS_PATCHER path=%s", filepath.Base(p.input))
}

// PatchFile reads inputPath, patches its edit lists and writes the result to
// outputPath, which may equal inputPath. It returns *utils.NoMovieError and
// writes nothing when the file has no top-level moov.
func PatchFile(inputPath, outputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	out, found, err := patchImage(data, filepath.Base(inputPath))
	if err != nil {
		return err
	}
	if !found {
		return &utils.NoMovieError{}
	}
	return os.WriteFile(outputPath, out, info.Mode().Perm())
}

func (p *filePatch) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(p, "Panic detected! Recovering from: %v", r)
			logger.Errorf(p, "%s", debug.Stack())
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return PatchFile(p.input, p.output)
}

// PatchFileEditList patches inputPath into outputPath and reports whether the
// edit lists were rewritten. A file without moov, or one that fails to patch,
// is copied to outputPath unmodified when the paths differ.
//
// headSec and midSec describe the head and inserted material segments of the
// assembled video; they are accepted for callers' convenience and do not
// change the produced edit list.
func PatchFileEditList(inputPath, outputPath string, headSec, midSec float64) bool {
	p := &filePatch{input: inputPath, output: outputPath}
	err := p.run()
	if err == nil {
		logger.Debugf(p, "edit lists patched into %s", outputPath)
		return true
	}
	var noMoov *utils.NoMovieError
	if errors.As(err, &noMoov) {
		logger.Warning(p, "no moov box, edit list patch skipped")
	} else {
		logger.Warningf(p, "edts patch failed: %v", err)
	}
	if !samePath(inputPath, outputPath) {
		if err = copyFile(inputPath, outputPath); err != nil {
			logger.Warningf(p, "copying original failed: %v", err)
		}
	}
	return false
}

// PatchMixedVideo patches the edit lists of an assembled video. In place, the
// result goes to a temporary file beside videoPath that replaces it only on
// success, so videoPath is never left half written. Otherwise the file is
// rewritten directly.
func PatchMixedVideo(videoPath string, headSec, totalMaterialSec float64, inPlace bool) (ok bool) {
	if !inPlace {
		return PatchFileEditList(videoPath, videoPath, headSec, totalMaterialSec)
	}
	p := &filePatch{input: videoPath, output: videoPath}
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf(p, "Panic detected! Recovering from: %v", r)
			logger.Errorf(p, "%s", debug.Stack())
			ok = false
		}
	}()
	ok, err := replaceFile(videoPath, func(tmpPath string) bool {
		return PatchFileEditList(videoPath, tmpPath, headSec, totalMaterialSec)
	})
	if err != nil {
		logger.Warningf(p, "in-place replace failed: %v", err)
	}
	return ok
}

// replaceFile hands write a fresh temporary path in target's directory and
// renames it over target when write reports success. The temporary file is
// removed on every other exit.
func replaceFile(target string, write func(tmpPath string) bool) (ok bool, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*.tmp")
	if err != nil {
		return false, err
	}
	tmpPath := tmp.Name()
	if err = tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return false, err
	}
	defer func() {
		if !ok {
			os.Remove(tmpPath)
		}
	}()

	if !write(tmpPath) {
		return false, nil
	}
	if info, statErr := os.Stat(target); statErr == nil {
		if err = os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
			return false, err
		}
	}
	if err = os.Rename(tmpPath, target); err != nil {
		return false, err
	}
	return true, nil
}

func samePath(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	ia, err := os.Stat(a)
	if err != nil {
		return false
	}
	ib, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ia, ib)
}

// copyFile copies src to dst keeping its permissions and modification time.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err = os.WriteFile(dst, data, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
