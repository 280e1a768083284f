package emit

import "strings"

// AttributeFileName is the file name suggested for AttributeSource output.
const AttributeFileName = "UniqueIdAttribute.cs"

const attributeTemplate = `// <auto-generated/>
using System;

namespace {{namespace}}
{
    /// <summary>
    /// Shape of the identifier generated for a [UniqueId] parameter.
    /// </summary>
    public enum UniqueIdFormat
    {
        /// <summary>First 8 digest bytes as 16 lowercase hex characters.</summary>
        Hex16 = 0,

        /// <summary>Full digest as 32 lowercase hex characters.</summary>
        Hex32 = 1,

        /// <summary>Full digest in dashed 8-4-4-4-12 form.</summary>
        Guid = 2,

        /// <summary>First 4 digest bytes as 8 lowercase hex characters.</summary>
        Hex8 = 3,

        /// <summary>Six characters usable as an HTML id: a letter, then a-z, 0-9, '-' or '_'.</summary>
        HtmlId = 4
    }

    /// <summary>
    /// Marks a parameter whose unique id is generated from its source location.
    /// </summary>
    [AttributeUsage(AttributeTargets.Parameter, AllowMultiple = false)]
    public sealed class UniqueIdAttribute : Attribute
    {
        public UniqueIdFormat Format { get; }

        public UniqueIdAttribute()
            : this(UniqueIdFormat.Hex16)
        {
        }

        public UniqueIdAttribute(UniqueIdFormat format)
        {
            Format = format;
        }
    }
}
`

// AttributeSource returns the C# declaration of the UniqueId attribute and
// its format enum in namespace ns.
func AttributeSource(ns string) string {
	return strings.ReplaceAll(attributeTemplate, "{{namespace}}", ns)
}
