package cmd

import (
	"context"
	"crypto/sha1"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/KaramelBytes/codeloom-cli/internal/ai"
	"github.com/KaramelBytes/codeloom-cli/internal/logging"
)

var (
	genProjectName string
	genModel       string
	genProvider    string
	genMaxTokens   int
	genTemp        float64
	genDryRun      bool
	genQuiet       bool
	genJSON        bool
	genPrintPrompt bool
	genStream      bool
	genOllamaHost  string
	genTimeoutSec  int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate backend code from the project's schema and stack",
	Example: `  codeloom generate -p shop --dry-run
  codeloom generate -p shop --model anthropic/claude-3.5-sonnet --max-tokens 16000
  codeloom generate -p shop --provider ollama --model qwen2.5-coder --stream`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		// Flag values persist between in-process invocations; only honor
		// those explicitly provided in this run.
		provided := map[string]bool{}
		cmd.Flags().Visit(func(fl *pflag.Flag) { provided[fl.Name] = true })
		if !provided["dry-run"] {
			genDryRun = false
		}
		if !provided["stream"] {
			genStream = false
		}
		if !provided["model"] {
			genModel = ""
		}
		if !provided["provider"] {
			genProvider = ""
		}
		if genJSON {
			genQuiet = true
		}

		p, err := loadProjectByName(genProjectName)
		if err != nil {
			return err
		}
		prompt, tokens, err := p.BuildPrompt()
		if err != nil {
			return err
		}
		model := selectModel(p, cfg, genModel)
		maxTokens, temp := generationSettings(p, cfg, genMaxTokens, genTemp)

		if genDryRun {
			sum := sha1.Sum([]byte(prompt))
			if !genQuiet {
				fmt.Fprintf(out, "--dry-run: no API call will be made (model=%s, prompt tokens≈%d, request id sim_%x)\n", model, tokens, sum[:6])
			}
			fmt.Fprintln(out, prompt)
			return nil
		}
		if genPrintPrompt && !genQuiet {
			fmt.Fprintln(out, "--print-prompt: sending the following prompt --")
			fmt.Fprintln(out, prompt)
		}

		runtime, providerName, err := buildRuntime(cfg, runtimeOptions{ProviderFlag: genProvider, OllamaHost: genOllamaHost})
		if err != nil {
			return err
		}

		timeoutSec := genTimeoutSec
		if timeoutSec <= 0 {
			timeoutSec = 600
		}
		base := cmd.Context()
		if base == nil {
			base = context.Background()
		}
		log := logging.L().With(zap.String("project", p.Name), zap.String("provider", providerName))
		ctx, cancel := context.WithTimeout(logging.WithContext(base, log), time.Duration(timeoutSec)*time.Second)
		defer cancel()

		if !genQuiet {
			fmt.Fprintf(out, "⚙ Generating %s with model=%s (prompt tokens≈%d) ...\n", p.Stack, model, tokens)
		}
		var onDelta func(string)
		if genStream && !genQuiet {
			onDelta = func(d string) { fmt.Fprint(out, d) }
		}
		started := time.Now()
		raw, requestID, err := ai.Complete(ctx, runtime, buildRequest(model, prompt, maxTokens, temp), onDelta)
		if err != nil {
			return ai.Explain(err, providerName, model)
		}
		if onDelta != nil {
			fmt.Fprintln(out)
		}
		g := p.RecordGeneration(model, requestID, raw)
		log.Info("generation parsed",
			zap.String("generation", g.ID),
			zap.Int("files", len(g.Files)),
			zap.Int("response_bytes", len(raw)),
			zap.Duration("elapsed", time.Since(started)))
		if err := p.Save(); err != nil {
			return err
		}
		if requestID != "" && !genQuiet {
			fmt.Fprintf(out, "Request ID: %s\n", requestID)
		}
		return writeGenerationSummary(g, summaryOptions{JSON: genJSON, Quiet: genQuiet, Writer: out})
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().StringVarP(&genProjectName, "project", "p", "", "project name")
	generateCmd.Flags().StringVar(&genModel, "model", "", "override model (default from project config)")
	generateCmd.Flags().StringVar(&genProvider, "provider", "", "provider: openrouter|ollama (aliases: openai, anthropic, local, ...)")
	generateCmd.Flags().IntVar(&genMaxTokens, "max-tokens", 0, "max tokens for the response")
	generateCmd.Flags().Float64Var(&genTemp, "temp", 0, "sampling temperature")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "print the prompt without calling the API")
	generateCmd.Flags().BoolVar(&genPrintPrompt, "print-prompt", false, "print the prompt being sent to the API")
	generateCmd.Flags().BoolVar(&genQuiet, "quiet", false, "only print generated file paths")
	generateCmd.Flags().BoolVar(&genJSON, "json", false, "emit parsed file records as JSON")
	generateCmd.Flags().BoolVar(&genStream, "stream", false, "stream the response while it is generated")
	generateCmd.Flags().StringVar(&genOllamaHost, "ollama-host", "", "override Ollama host (e.g., http://127.0.0.1:11434)")
	generateCmd.Flags().IntVar(&genTimeoutSec, "timeout-sec", 600, "request timeout in seconds")
}
