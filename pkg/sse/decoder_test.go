package sse_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatwidget/pkg/sse"
)

// decodeAll feeds every fragment in order, then flushes.
func decodeAll(fragments ...string) []sse.Frame {
	d := sse.NewDecoder()
	var frames []sse.Frame
	for _, f := range fragments {
		frames = append(frames, d.Feed([]byte(f))...)
	}
	if frame, ok := d.Flush(); ok {
		frames = append(frames, frame)
	}
	return frames
}

func texts(frames []sse.Frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Text)
	}
	return out
}

var _ = Describe("Decoder", func() {
	Describe("Feed", func() {
		It("reassembles data lines split across fragments", func() {
			frames := decodeAll("data: Hel", "lo\ndata: Wor", "ld\ndata: [DONE]\n")
			Expect(frames).To(Equal([]sse.Frame{
				sse.DataFrame("Hello"),
				sse.DataFrame("World"),
			}))
		})

		It("emits nothing until a newline arrives", func() {
			d := sse.NewDecoder()
			Expect(d.Feed([]byte("data: partial"))).To(BeEmpty())
			Expect(sse.Pending(d)).To(Equal("data: partial"))

			frames := d.Feed([]byte(" line\n"))
			Expect(frames).To(Equal([]sse.Frame{sse.DataFrame("partial line")}))
			Expect(sse.Pending(d)).To(BeEmpty())
		})

		It("keeps the unterminated tail pending", func() {
			d := sse.NewDecoder()
			frames := d.Feed([]byte("one\ntwo\nthr"))
			Expect(texts(frames)).To(Equal([]string{"one", "two"}))
			Expect(sse.Pending(d)).To(Equal("thr"))
		})

		It("never keeps a newline in the pending buffer", func() {
			d := sse.NewDecoder()
			for _, f := range []string{"a\n", "\n\nb", "c\n", "d"} {
				d.Feed([]byte(f))
				Expect(sse.Pending(d)).NotTo(ContainSubstring("\n"))
			}
		})

		It("emits plain lines verbatim", func() {
			frames := decodeAll("  indented text\nevent: message\n")
			Expect(frames).To(Equal([]sse.Frame{
				sse.LineFrame("  indented text"),
				sse.LineFrame("event: message"),
			}))
		})

		It("treats data without the trailing space as a plain line", func() {
			frames := decodeAll("data:no-space\n")
			Expect(frames).To(Equal([]sse.Frame{sse.LineFrame("data:no-space")}))
		})

		It("emits an empty data payload as-is", func() {
			frames := decodeAll("data: \n")
			Expect(frames).To(Equal([]sse.Frame{sse.DataFrame("")}))
		})

		It("skips empty and whitespace-only lines", func() {
			frames := decodeAll("\n\n   \n\t\ndata: x\n \n")
			Expect(frames).To(Equal([]sse.Frame{sse.DataFrame("x")}))
		})

		It("ignores empty fragments", func() {
			d := sse.NewDecoder()
			Expect(d.Feed(nil)).To(BeEmpty())
			Expect(d.Feed([]byte{})).To(BeEmpty())
			Expect(sse.Pending(d)).To(BeEmpty())
		})

		It("strips a carriage return from CRLF line endings", func() {
			frames := decodeAll("data: Hello\r\ndata: [DONE]\r\n")
			Expect(frames).To(Equal([]sse.Frame{sse.DataFrame("Hello")}))
		})

		It("preserves order without deduplication", func() {
			frames := decodeAll("data: a\ndata: a\nb\ndata: a\n")
			Expect(texts(frames)).To(Equal([]string{"a", "a", "b", "a"}))
		})
	})

	Describe("sentinel", func() {
		It("never emits [DONE]", func() {
			Expect(decodeAll("data: [DONE]\n")).To(BeEmpty())
		})

		It("swallows [DONE] reassembled across a split", func() {
			Expect(decodeAll("data: [DO", "NE]\n")).To(BeEmpty())
			Expect(decodeAll("da", "ta: [DONE]")).To(BeEmpty())
		})

		It("compares the sentinel byte-exactly", func() {
			frames := decodeAll("data:  [DONE]\ndata: [DONE] \n[DONE]\n")
			Expect(frames).To(Equal([]sse.Frame{
				sse.DataFrame(" [DONE]"),
				sse.DataFrame("[DONE] "),
				sse.LineFrame("[DONE]"),
			}))
		})

		It("keeps decoding content after the sentinel", func() {
			frames := decodeAll("data: [DONE]\ndata: late\n")
			Expect(frames).To(Equal([]sse.Frame{sse.DataFrame("late")}))
		})
	})

	Describe("Flush", func() {
		It("emits the unterminated tail as a plain line", func() {
			d := sse.NewDecoder()
			Expect(d.Feed([]byte("partial text"))).To(BeEmpty())

			frame, ok := d.Flush()
			Expect(ok).To(BeTrue())
			Expect(frame).To(Equal(sse.LineFrame("partial text")))
			Expect(sse.Pending(d)).To(BeEmpty())
		})

		It("classifies an unterminated data line", func() {
			frame, ok := func() (sse.Frame, bool) {
				d := sse.NewDecoder()
				d.Feed([]byte("data: tail"))
				return d.Flush()
			}()
			Expect(ok).To(BeTrue())
			Expect(frame).To(Equal(sse.DataFrame("tail")))
		})

		It("emits nothing for a blank tail", func() {
			d := sse.NewDecoder()
			d.Feed([]byte("data: x\n   "))
			_, ok := d.Flush()
			Expect(ok).To(BeFalse())
			Expect(sse.Pending(d)).To(BeEmpty())
		})

		It("emits nothing when the buffer is empty", func() {
			d := sse.NewDecoder()
			_, ok := d.Flush()
			Expect(ok).To(BeFalse())
		})

		It("flushes only once", func() {
			d := sse.NewDecoder()
			d.Feed([]byte("tail"))
			_, ok := d.Flush()
			Expect(ok).To(BeTrue())
			_, ok = d.Flush()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("split invariance", func() {
		inputs := []string{
			"data: Hello world\n",
			"data: [DONE]\n",
			"plain text line\n",
			"data: first\ndata: second\n\ndata: [DONE]\n",
			"data: héllo wörld ✓\n",
			"line one\nline two without newline",
		}

		for _, input := range inputs {
			It("yields the same frames for every split offset of "+strings.ReplaceAll(input, "\n", `\n`), func() {
				whole := decodeAll(input)
				for i := 0; i <= len(input); i++ {
					Expect(decodeAll(input[:i], input[i:])).To(Equal(whole), "split at offset %d", i)
				}
			})
		}

		It("yields the same frames when fed one byte at a time", func() {
			input := "data: Helélo\ndata: 世界\nplain\ndata: [DONE]\n"
			fragments := make([]string, 0, len(input))
			for i := 0; i < len(input); i++ {
				fragments = append(fragments, input[i:i+1])
			}
			Expect(decodeAll(fragments...)).To(Equal(decodeAll(input)))
			Expect(texts(decodeAll(fragments...))).To(Equal([]string{"Helélo", "世界", "plain"}))
		})
	})

	Describe("lines and remainder", func() {
		It("yields the classified lines followed by the remainder", func() {
			lines := []string{"data: a", "", "b", "data: [DONE]", "data: c"}
			remainder := "data: r"
			input := strings.Join(lines, "\n") + "\n" + remainder

			Expect(decodeAll(input)).To(Equal([]sse.Frame{
				sse.DataFrame("a"),
				sse.LineFrame("b"),
				sse.DataFrame("c"),
				sse.DataFrame("r"),
			}))
		})
	})

	Describe("invalid UTF-8", func() {
		It("replaces invalid bytes rather than failing", func() {
			frames := decodeAll("data: ok\xff\n")
			Expect(frames).To(HaveLen(1))
			Expect(frames[0].Text).To(Equal("ok�"))
		})
	})
})

var _ = Describe("FrameKind", func() {
	It("has readable names", func() {
		Expect(sse.FrameData.String()).To(Equal("data"))
		Expect(sse.FrameLine.String()).To(Equal("line"))
		Expect(sse.FrameKind(42).String()).To(Equal("unknown"))
	})
})
