package droidsdk

import (
	"context"
	"fmt"
	"os"
)

const (
	supportLibraryGroup = "com.android.support"
	playServicesGroup   = "com.google.android.gms"
)

// Resolver installs the SDK packages a build needs.
type Resolver struct {
	Installer Installer
	// Prober checks local m2 repositories; nil means MavenProbe.
	Prober Prober
}

// Report is what one resolution pass did.
type Report struct {
	// Installed lists package names in the order they were requested.
	Installed []string
	// Repositories are local Maven repositories the build must add, in registration order.
	Repositories []string
}

func (r *Report) addRepository(dir string) {
	for _, existing := range r.Repositories {
		if existing == dir {
			return
		}
	}
	r.Repositories = append(r.Repositories, dir)
}

type resolveRun struct {
	ctx     context.Context
	sdkRoot string
	req     *Requirements
	report  *Report
	*Resolver
}

// resolution is one sub-step of a pass, skipped when applies returns false.
type resolution struct {
	name    string
	applies func(req *Requirements) bool
	run     func(r *resolveRun) error
}

func hasTargetPlatform(req *Requirements) bool { return req.HasTargetPlatform }
func always(*Requirements) bool                { return true }

var resolutions = []resolution{
	{name: "build tools", applies: hasTargetPlatform, run: (*resolveRun).resolveBuildTools},
	{name: "platform tools", applies: always, run: (*resolveRun).resolvePlatformTools},
	{name: "compile target", applies: hasTargetPlatform, run: (*resolveRun).resolveCompileTarget},
	{name: "support repository", applies: always, run: (*resolveRun).resolveSupportRepository},
	{name: "google repository", applies: always, run: (*resolveRun).resolveGoogleRepository},
}

// Resolve brings sdkRoot up to what req declares. The first failed install
// aborts the pass; the returned report covers the steps done before it.
func (res *Resolver) Resolve(ctx context.Context, sdkRoot string, req *Requirements) (*Report, error) {
	if res.Installer == nil {
		return nil, fmt.Errorf("resolver has no installer")
	}
	run := &resolveRun{
		ctx:      ctx,
		sdkRoot:  sdkRoot,
		req:      req,
		report:   &Report{},
		Resolver: res,
	}

	for _, sub := range resolutions {
		if !sub.applies(req) {
			debugf("Skipping %s: build declares no target platform\n", sub.name)
			continue
		}
		if err := sub.run(run); err != nil {
			return run.report, err
		}
	}
	return run.report, nil
}

func (r *resolveRun) resolveBuildTools() error {
	if r.req.BuildToolsRevision == "" {
		debugf("No build tools revision declared\n")
		return nil
	}
	return r.ensure(BuildTools(r.req.BuildToolsRevision))
}

func (r *resolveRun) resolvePlatformTools() error {
	return r.ensure(PlatformTools)
}

func (r *resolveRun) resolveCompileTarget() error {
	for _, c := range TargetComponents(r.req.CompileTarget) {
		if err := r.ensure(c); err != nil {
			return err
		}
	}
	return nil
}

func (r *resolveRun) resolveSupportRepository() error {
	return r.resolveRepository(supportLibraryGroup, SupportRepository, SupportRepository)
}

// Play services artifacts depend on support-library artifacts, so both
// repositories are registered.
func (r *resolveRun) resolveGoogleRepository() error {
	return r.resolveRepository(playServicesGroup, GoogleRepository, SupportRepository, GoogleRepository)
}

// resolveRepository installs target when the build uses group and the local
// repository is missing or cannot satisfy the declared versions.
func (r *resolveRun) resolveRepository(group string, target Component, repos ...Component) error {
	deps := r.req.DependenciesInGroup(group)
	if len(deps) == 0 {
		debugf("No %s dependencies declared, skipping %s\n", group, target.Package)
		return nil
	}

	dirs := make([]string, 0, len(repos))
	for _, repo := range repos {
		dir := repo.Path(r.sdkRoot)
		dirs = append(dirs, dir)
		r.report.addRepository(dir)
	}

	if isMissing(target.Path(r.sdkRoot)) {
		return r.install(target)
	}

	prober := r.Prober
	if prober == nil {
		prober = MavenProbe{}
	}
	if result := prober.Probe(dirs, deps); result != ProbeAvailable {
		colNote.Printf("%s looks outdated (%s), updating\n", target.Package, result)
		return r.install(target)
	}
	return nil
}

// ensure installs c unless its directory already has content.
func (r *resolveRun) ensure(c Component) error {
	if !isMissing(c.Path(r.sdkRoot)) {
		debugf("%s already installed\n", c.Package)
		return nil
	}
	return r.install(c)
}

func (r *resolveRun) install(c Component) error {
	step("Installing %s", c.Package)
	code, err := r.Installer.Install(r.ctx, c.Package)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInstallationFailure, c.Package, err)
	}
	if code != 0 {
		return &InstallError{Package: c.Package, ExitCode: code}
	}
	r.report.Installed = append(r.report.Installed, c.Package)
	return nil
}

// isMissing reports whether dir is absent or has no entries.
func isMissing(dir string) bool {
	f, err := os.Open(dir)
	if err != nil {
		return true
	}
	defer f.Close()
	names, err := f.Readdirnames(1)
	return err != nil || len(names) == 0
}
