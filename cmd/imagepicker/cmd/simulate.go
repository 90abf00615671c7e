package cmd

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/go-drift/imagepicker/internal/config"
	"github.com/go-drift/imagepicker/internal/simulator"
	"github.com/go-drift/imagepicker/pkg/imagepicker"
	"github.com/go-drift/imagepicker/pkg/platform"
)

// Viper keys of the simulate settings. In imagepicker.yaml they live under
// "simulate:"; as environment variables they read IMAGEPICKER_SIMULATE_<KEY>.
const (
	keyCamera       = "simulate.camera"
	keyPhotos       = "simulate.photos"
	keyAnswerCamera = "simulate.answer_camera"
	keyAnswerPhotos = "simulate.answer_photos"
	keyChoice       = "simulate.choice"
	keyPrompt       = "simulate.prompt"
	keyResult       = "simulate.result"
	keyImage        = "simulate.image"
	keyAllowEditing = "simulate.allow_editing"
	keyAllowDelete  = "simulate.allow_delete"
	keyTitle        = "simulate.title"
	keyMessage      = "simulate.message"
	keyDetached     = "simulate.detached"
	keyTimeout      = "simulate.timeout"
)

var validStatuses = []string{
	string(platform.PermissionGranted),
	string(platform.PermissionLimited),
	string(platform.PermissionDenied),
	string(platform.PermissionPermanentlyDenied),
	string(platform.PermissionRestricted),
	string(platform.PermissionNotDetermined),
}

var validResults = []string{simulator.ResultFinish, simulator.ResultCancel, simulator.ResultNone}

func newSimulateCmd(v *viper.Viper, root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the picker flow against a scripted device",
		Long: `Run authorization, source selection and picking against a simulated
device and print what the user would see, followed by the result.

Permission statuses use the bridge names: granted, limited, denied,
permanently_denied, restricted, not_determined.`,
		Example: `  imagepicker simulate --camera denied --prompt "Open Settings" --choice "Photo Library"
  imagepicker simulate --allow-delete --choice Delete
  IMAGEPICKER_SIMULATE_RESULT=cancel imagepicker simulate`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, v, root.dir)
		},
	}

	f := cmd.Flags()
	f.String("camera", "granted", "camera permission status")
	f.String("photos", "granted", "photo library permission status")
	f.String("answer-camera", "granted", "camera status after the OS prompt")
	f.String("answer-photos", "granted", "photo library status after the OS prompt")
	f.String("choice", "Photo Library", "action tapped on the source sheet")
	f.String("prompt", "Cancel", "action tapped on settings prompts")
	f.String("result", simulator.ResultFinish, "what the user does in the picker (finish, cancel, none)")
	f.String("image", "", "image file returned by the picker (default: a generated PNG)")
	f.Bool("allow-editing", false, "enable the edit step and return the edited image")
	f.Bool("allow-delete", false, "offer a delete action on the source sheet")
	f.String("title", "", "source sheet title")
	f.String("message", "", "source sheet message")
	f.Bool("detached", false, "simulate a view that left the window")
	f.Duration("timeout", 5*time.Second, "give up waiting for a result after this long")

	for key, flag := range map[string]string{
		keyCamera:       "camera",
		keyPhotos:       "photos",
		keyAnswerCamera: "answer-camera",
		keyAnswerPhotos: "answer-photos",
		keyChoice:       "choice",
		keyPrompt:       "prompt",
		keyResult:       "result",
		keyImage:        "image",
		keyAllowEditing: "allow-editing",
		keyAllowDelete:  "allow-delete",
		keyTitle:        "title",
		keyMessage:      "message",
		keyDetached:     "detached",
		keyTimeout:      "timeout",
	} {
		_ = v.BindPFlag(key, f.Lookup(flag))
	}
	return cmd
}

type simulateSettings struct {
	script  simulator.Script
	options imagepicker.Options
	timeout time.Duration
}

func loadSimulateSettings(v *viper.Viper) (simulateSettings, error) {
	for _, key := range []string{keyCamera, keyPhotos, keyAnswerCamera, keyAnswerPhotos} {
		if s := v.GetString(key); !slices.Contains(validStatuses, s) {
			return simulateSettings{}, fmt.Errorf("invalid %s %q (use one of %v)", key, s, validStatuses)
		}
	}
	result := v.GetString(keyResult)
	if !slices.Contains(validResults, result) {
		return simulateSettings{}, fmt.Errorf("invalid %s %q (use one of %v)", keyResult, result, validResults)
	}
	timeout := v.GetDuration(keyTimeout)
	if timeout <= 0 {
		return simulateSettings{}, fmt.Errorf("%s must be positive", keyTimeout)
	}

	media, err := loadMedia(v.GetString(keyImage))
	if err != nil {
		return simulateSettings{}, err
	}

	return simulateSettings{
		script: simulator.Script{
			Permissions: map[string]string{
				"camera": v.GetString(keyCamera),
				"photos": v.GetString(keyPhotos),
			},
			Answers: map[string]string{
				"camera": v.GetString(keyAnswerCamera),
				"photos": v.GetString(keyAnswerPhotos),
			},
			Usage: map[string]string{
				"camera": "Take a photo to attach",
				"photos": "Choose a photo to attach",
			},
			Detached:     v.GetBool(keyDetached),
			SheetChoice:  v.GetString(keyChoice),
			PromptChoice: v.GetString(keyPrompt),
			Result:       result,
			Media:        media,
		},
		options: imagepicker.Options{
			AllowEditing: v.GetBool(keyAllowEditing),
			AllowDelete:  v.GetBool(keyAllowDelete),
			Title:        v.GetString(keyTitle),
			Message:      v.GetString(keyMessage),
		},
		timeout: timeout,
	}, nil
}

// loadMedia builds the picker's image entry from path, or from a generated
// PNG when path is empty.
func loadMedia(path string) (map[string]any, error) {
	if path == "" {
		data, err := samplePNG()
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"path": "/simulated/IMG_0001.PNG",
			"data": base64.StdEncoding.EncodeToString(data),
		}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return map[string]any{
		"path": abs,
		"data": base64.StdEncoding.EncodeToString(data),
	}, nil
}

func samplePNG() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 5), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func runSimulate(cmd *cobra.Command, v *viper.Viper, dir string) error {
	settings, err := loadSimulateSettings(v)
	if err != nil {
		return err
	}
	root, err := config.FindProjectRoot(dir)
	if err != nil {
		return err
	}
	resolved, err := config.Resolve(root)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: simulating image picker\n", resolved.AppName)

	bridge := simulator.New(settings.script, out)
	loop := simulator.NewLoop()
	platform.SetNativeBridge(bridge)
	platform.RegisterDispatch(loop.Dispatch)
	defer func() {
		bridge.Wait()
		platform.RegisterDispatch(nil)
		platform.SetNativeBridge(nil)
	}()

	if err := platform.RequireBridgeVersion(platform.MinBridgeVersion); err != nil {
		return err
	}

	picker := imagepicker.NewNative(imagepicker.WithConfig(resolved.Strings))
	ctx, cancel := context.WithTimeout(cmd.Context(), settings.timeout)
	defer cancel()

	var (
		result imagepicker.Result
		done   bool
	)
	picker.PresentImagePicker(ctx, imagepicker.NewNativeSurface("root"), settings.options, func(r imagepicker.Result) {
		result, done = r, true
		cancel()
	})
	// This goroutine is the UI thread until the picker completes.
	loop.Run(ctx)

	if !done {
		return fmt.Errorf("no result within %s", settings.timeout)
	}
	printResult(out, result)
	return nil
}

func printResult(out io.Writer, r imagepicker.Result) {
	fmt.Fprintf(out, "result: %s\n", r.Outcome)
	switch r.Outcome {
	case imagepicker.OutcomeSucceeded:
		img := r.Image
		fmt.Fprintf(out, "  path: %s\n", img.Path)
		if img.MimeType != "" {
			fmt.Fprintf(out, "  type: %s\n", img.MimeType)
		}
		if img.Width > 0 && img.Height > 0 {
			fmt.Fprintf(out, "  size: %dx%d\n", img.Width, img.Height)
		}
		fmt.Fprintf(out, "  bytes: %d\n", img.Size)
	case imagepicker.OutcomeFailed:
		fmt.Fprintf(out, "  error: %v\n", r.Err)
	}
}
