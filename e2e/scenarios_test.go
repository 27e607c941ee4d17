package e2e_test

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/terassyi/jaroverlap/internal/classpath"
	"github.com/terassyi/jaroverlap/internal/config"
	"github.com/terassyi/jaroverlap/internal/report"
	"github.com/terassyi/jaroverlap/internal/scan"
	"github.com/terassyi/jaroverlap/internal/testutil"
)

// analyze runs the whole pipeline and returns the text report.
func analyze(target, workdir string, opts report.Options) string {
	GinkgoHelper()
	res, err := scan.Run(context.Background(), target, scan.Options{Workdir: workdir})
	Expect(err).NotTo(HaveOccurred())

	var buf bytes.Buffer
	Expect(report.Write(&buf, report.Build(res.Index, opts), config.OutputText, true)).To(Succeed())
	return buf.String()
}

func overlapLine(jar1, jar2 string, n int, percent string) string {
	return fmt.Sprintf("%s overlaps with %s - total overlapping classes: %d (percent overlap: %s)\n", jar1, jar2, n, percent)
}

var _ = Describe("jar overlap report", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("reports two identical copies of a jar", func() {
		By("Writing the same jar at two paths")
		classes := testutil.Classes("com/a", 4, 100)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "x", "a-1.0.0.jar"), classes)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "y", "a-1.0.0.jar"), classes)

		out := analyze(dir, "", report.Options{})

		By("Checking the overlap line and warnings")
		Expect(out).To(ContainSubstring(overlapLine("a-1.0.0.jar", "a-1.0.0.jar", 4, "100.00") +
			"** WARNING: a-1.0.0.jar is fully contained in a-1.0.0.jar\n" +
			"** WARNING: Possible duplicate jars: a-1.0.0.jar a-1.0.0.jar\n" +
			"** WARNING: Consider removing the older version: a-1.0.0.jar\n"))
		Expect(out).To(ContainSubstring("Total number of classes with more than one version: 4\n"))
	})

	It("recommends removing the older version", func() {
		shared := testutil.Classes("org/lib", 5, 100)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "lib-1.2.0.jar"), shared)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "lib-1.3.0.jar"), testutil.Merge(shared, testutil.Classes("org/lib/v13", 2, 50)))

		out := analyze(dir, "", report.Options{})

		Expect(out).To(ContainSubstring(overlapLine("lib-1.2.0.jar", "lib-1.3.0.jar", 5, "100.00")))
		Expect(out).To(ContainSubstring("** WARNING: Possible duplicate jars: lib-1.2.0.jar lib-1.3.0.jar\n"))
		Expect(out).To(ContainSubstring("** WARNING: Consider removing the older version: lib-1.2.0.jar\n"))
	})

	DescribeTable("counts size-distinct duplicates",
		func(size1, size2 int, excludeSameSize bool, want int) {
			testutil.WriteJar(GinkgoT(), filepath.Join(dir, "one-1.0.0.jar"), testutil.Files{"X.class": size1, "One.class": 10})
			testutil.WriteJar(GinkgoT(), filepath.Join(dir, "two-1.0.0.jar"), testutil.Files{"X.class": size2, "Two.class": 10})

			out := analyze(dir, "", report.Options{ExcludeSameSize: excludeSameSize})

			Expect(out).To(ContainSubstring(fmt.Sprintf("Total number of classes with more than one version: %d\n", want)))
			if want == 0 {
				Expect(out).NotTo(ContainSubstring("overlaps with"))
			} else {
				Expect(out).To(ContainSubstring(overlapLine("one-1.0.0.jar", "two-1.0.0.jar", want, "50.00")))
			}
			if excludeSameSize {
				Expect(out).NotTo(ContainSubstring(report.SameSizeHint))
			} else {
				Expect(out).To(ContainSubstring(report.SameSizeHint))
			}
		},
		Entry("different sizes, excluding same size", 1000, 1200, true, 1),
		Entry("same sizes, excluding same size", 1000, 1000, true, 0),
		Entry("same sizes, counting all", 1000, 1000, false, 1),
	)

	It("warns when one jar is contained in another", func() {
		core := testutil.Classes("org/core", 200, 20)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "core-2.0.0.jar"), core)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "fat-app.jar"), testutil.Merge(core, testutil.Classes("com/app", 800, 20)))

		out := analyze(dir, "", report.Options{})

		Expect(out).To(ContainSubstring(overlapLine("core-2.0.0.jar", "fat-app.jar", 200, "100.00") +
			"** WARNING: core-2.0.0.jar is fully contained in fat-app.jar\n"))
		Expect(out).NotTo(ContainSubstring("Possible duplicate jars"))
	})

	It("degrades when versions cannot be parsed", func() {
		classes := testutil.Classes("com/vendor", 3, 10)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "x", "vendor.jar"), classes)
		testutil.WriteJar(GinkgoT(), filepath.Join(dir, "y", "vendor.jar"), classes)

		out := analyze(dir, "", report.Options{})

		Expect(out).To(ContainSubstring(overlapLine("vendor.jar", "vendor.jar", 3, "100.00")))
		Expect(out).To(ContainSubstring("** WARNING: Possible duplicate jars: vendor.jar vendor.jar\n" +
			"** WARNING: Could not determine which jar is older.  Version numbering may not follow SemVer.\n"))
	})

	It("searches a war by resource name", func() {
		By("Building a war with a service file in two jars")
		service := testutil.Files{"META-INF/services/foo.Bar": 30}
		war := testutil.WriteWar(GinkgoT(), filepath.Join(dir, "app.war"), testutil.War{
			Classes: testutil.Classes("com/app", 2, 10),
			Libs: map[string]testutil.Files{
				"impl-a-1.0.0.jar": testutil.Merge(service, testutil.Classes("a", 2, 10)),
				"impl-b-1.0.0.jar": testutil.Merge(service, testutil.Classes("b", 2, 10)),
			},
		})
		work := filepath.Join(dir, "work")

		out := analyze(war, work, report.Options{Search: `foo\.Bar$`})

		libURL := func(name string) string {
			return classpath.FileURL(filepath.Join(work, "WEB-INF", "lib", name), false)
		}
		Expect(out).To(HaveSuffix("\nSearch results using regular expression: foo\\.Bar$\n\n" +
			"/META-INF/services/foo.Bar\n\n" +
			"    " + libURL("impl-a-1.0.0.jar") + "\n" +
			"    " + libURL("impl-b-1.0.0.jar") + "\n\n"))
	})

	It("scans the classes folder of a war", func() {
		war := testutil.WriteWar(GinkgoT(), filepath.Join(dir, "app.war"), testutil.War{
			Classes: testutil.Classes("org/shade", 2, 10),
			Libs: map[string]testutil.Files{
				"shade-1.0.0.jar": testutil.Classes("org/shade", 4, 10),
			},
		})
		work := filepath.Join(dir, "work")

		out := analyze(war, work, report.Options{})

		classesURL := classpath.FileURL(filepath.Join(work, "WEB-INF", "classes"), true)
		Expect(out).To(ContainSubstring(overlapLine(classesURL, "shade-1.0.0.jar", 2, "100.00")))
	})

	It("scans a tar.xz distribution", func() {
		dist := testutil.WriteTarball(GinkgoT(), filepath.Join(dir, "dist.tar.xz"), testutil.XZ, map[string]testutil.Files{
			"dist/lib/json-1.0.0.jar": testutil.Classes("org/json", 3, 10),
			"dist/ext/json-1.1.0.jar": testutil.Classes("org/json", 3, 12),
		})

		out := analyze(dist, filepath.Join(dir, "work"), report.Options{ExcludeSameSize: true})

		Expect(out).To(ContainSubstring(overlapLine("json-1.1.0.jar", "json-1.0.0.jar", 3, "100.00")))
		Expect(out).To(ContainSubstring("** WARNING: Consider removing the older version: json-1.0.0.jar\n"))
	})

	It("produces byte-identical reports on repeated runs", func() {
		libs := map[string]testutil.Files{}
		for i := range 6 {
			libs[fmt.Sprintf("lib%d-1.%d.0.jar", i%3, i)] = testutil.Classes(fmt.Sprintf("org/lib%d", i%3), 5+i, 10+i)
		}
		war := testutil.WriteWar(GinkgoT(), filepath.Join(dir, "app.war"), testutil.War{
			Classes: testutil.Classes("org/lib0", 3, 10),
			Libs:    libs,
		})
		work := filepath.Join(dir, "work")
		opts := report.Options{Detail: true, ShowSizes: true, Search: `lib1/C`}

		first := analyze(war, work, opts)
		second := analyze(war, work, opts)
		Expect(second).To(Equal(first))
	})
})
