package main

import (
	"flag"
	"log"
	"strings"

	"github.com/mogaika/anmerge/config"
	"github.com/mogaika/anmerge/rules"
	"github.com/mogaika/anmerge/vfs"
	"github.com/mogaika/anmerge/web"
)

func main() {
	var addr, dir, cfgPath, ruleFiles, encoding string
	flag.StringVar(&addr, "i", "", "Address of server (default from config, :8000)")
	flag.StringVar(&dir, "dir", "", "Path to clips, cookbooks and descriptors")
	flag.StringVar(&cfgPath, "config", "", "Path to "+config.DefaultFileName)
	flag.StringVar(&ruleFiles, "rules", "", "Comma separated rule files merged over the builtin tables")
	flag.StringVar(&encoding, "encoding", "", "Charmap of .ani descriptors")
	flag.Parse()

	explicit := cfgPath != ""
	if !explicit {
		cfgPath = config.DefaultFileName
	}
	cfg, err := config.Load(cfgPath, explicit)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Listen = addr
	}
	if dir != "" {
		cfg.Dir = dir
	}
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if ruleFiles != "" {
		cfg.Rules = append(cfg.Rules, strings.Split(ruleFiles, ",")...)
	}
	if err := cfg.Apply(); err != nil {
		log.Fatal(err)
	}

	reg, err := rules.LoadFiles(cfg.Rules...)
	if err != nil {
		log.Fatal(err)
	}

	s := web.NewServer(vfs.NewDirectoryDriver(cfg.Dir), reg)
	if err := s.Start(cfg.Listen, "web"); err != nil {
		log.Fatal(err)
	}
}
