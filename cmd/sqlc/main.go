// sqlc прогоняет sqlc generate по каждому query.sql из .sqlc.base.yaml:
// пакет кладётся рядом с файлом запросов и называется по его каталогу.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
)

const generatedConfigName = "sqlc.yaml"

func main() {
	var (
		base   = flag.String("base", ".sqlc.base.yaml", "базовый конфиг sqlc")
		binary = flag.String("sqlc", "sqlc", "путь к бинарю sqlc")
		dry    = flag.Bool("dry", false, "только напечатать конфиги")
	)
	flag.Parse()

	if err := run(*base, *binary, *dry); err != nil {
		log.Fatalf("[SQLC] %v", err)
	}
	fmt.Println("done")
}

func run(basePath, binary string, dry bool) error {
	v := viper.New()
	v.SetConfigFile(basePath)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "read base config")
	}

	files, err := queryFiles(v.GetStringSlice("sql.0.source"))
	if err != nil {
		return err
	}
	engine := v.Sub("sql.0")
	if engine == nil {
		return errors.New("has no sql.0 in base config")
	}
	engine.Set("schema", v.GetString("sql.0.schema"))

	defer func() { _ = os.Remove(generatedConfigName) }()
	for _, file := range files {
		content, err := renderConfig(v.GetString("version"), engine, file)
		if err != nil {
			return errors.Wrapf(err, "render config for %s", file)
		}
		if dry {
			fmt.Printf("# %s\n%s\n", file, content)
			continue
		}
		if err := os.WriteFile(generatedConfigName, content, 0o600); err != nil {
			return errors.Wrap(err, "write sqlc.yaml")
		}
		if err := callSqlc(binary, generatedConfigName); err != nil {
			return err
		}
		fmt.Printf("%s file complete\n", file)
	}
	return nil
}

func queryFiles(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, errors.New("has no sql.0.source in base config")
	}
	var files []string
	for _, pattern := range patterns {
		f, err := filepath.Glob(pattern)
		if err != nil {
			return nil, errors.Wrapf(err, "glob %s", pattern)
		}
		files = append(files, f...)
	}
	if len(files) == 0 {
		return nil, errors.New("no query files matched")
	}
	return files, nil
}

// renderConfig: один блок sql на файл запросов, go-пакет = имя каталога.
func renderConfig(version string, engine *viper.Viper, file string) ([]byte, error) {
	dir := filepath.Dir(file)
	engine.Set("gen.go.package", filepath.Base(dir))
	engine.Set("gen.go.out", dir)
	engine.Set("queries", file)

	settings := engine.AllSettings()
	delete(settings, "source")

	bs, err := yaml.Marshal(map[string]any{
		"version": version,
		"sql":     []any{settings},
	})
	if err != nil {
		return nil, errors.Wrap(err, "marshal config to yaml")
	}
	return bs, nil
}

func callSqlc(binary, config string) error {
	cmd := exec.Command(binary, "generate", "--file", config)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "call sqlc: %s", string(output))
	}
	return nil
}
